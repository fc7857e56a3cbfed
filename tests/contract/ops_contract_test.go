package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-notify/internal/dto"
	"github.com/noah-isme/gema-notify/internal/handler"
	"github.com/noah-isme/gema-notify/internal/service"
)

type stubOpsService struct {
	reminders []dto.ReminderResponse
}

func (s stubOpsService) RemindersByAssignment(context.Context, uint) ([]dto.ReminderResponse, error) {
	return s.reminders, nil
}

func (s stubOpsService) DueReminders(context.Context, time.Time) ([]dto.ReminderResponse, error) {
	return s.reminders, nil
}

func (s stubOpsService) RecordsByRecipient(context.Context, string, int, int) ([]dto.RecordResponse, error) {
	return nil, nil
}

func (s stubOpsService) RecordsByAssignment(context.Context, uint) ([]dto.RecordResponse, error) {
	return nil, nil
}

type stubSweepDispatcher struct {
	report service.SweepReport
}

func (s stubSweepDispatcher) RunSweep(_ context.Context, now time.Time) (service.SweepReport, error) {
	report := s.report
	report.RanAt = now
	return report, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()

	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func opsTestApp(ops service.OpsService, sweep service.SweepDispatcher) *fiber.App {
	app := fiber.New()
	handler.NewReminderHandler(ops, sweep, nil, zerolog.Nop()).Register(app.Group("/api/ops"))
	return app
}

func TestSweepReportContract(t *testing.T) {
	schema := compileSchema(t, "sweep_report.schema.json")

	dispatcher := stubSweepDispatcher{report: service.SweepReport{
		Due:       4,
		Claimed:   3,
		LostRaces: 1,
		Sent:      5,
		Failed:    1,
	}}
	app := opsTestApp(stubOpsService{}, dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/api/ops/sweep", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestReminderListContract(t *testing.T) {
	schema := compileSchema(t, "reminder_list.schema.json")

	now := time.Now().UTC()
	ops := stubOpsService{reminders: []dto.ReminderResponse{
		{ID: 1, AssignmentID: 7, Kind: "due_in_48h", ScheduledFor: now.Add(24 * time.Hour), CreatedAt: now, UpdatedAt: now},
		{ID: 2, AssignmentID: 7, Kind: "overdue", ScheduledFor: now.Add(73 * time.Hour), Processed: true, CreatedAt: now, UpdatedAt: now},
	}}
	app := opsTestApp(ops, stubSweepDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/ops/assignments/7/reminders", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
