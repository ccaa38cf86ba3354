package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moolen/troubleshooter/internal/api"
	"github.com/moolen/troubleshooter/internal/diagnosis"
)

// DiagnoseInput is the argument object of the diagnose tool
type DiagnoseInput struct {
	Failure        string `json:"failure"`
	PartitionID    string `json:"partition_id"`
	SerialNumber   string `json:"serial_number"`
	JobNumber      string `json:"job_number"`
	JobStart       string `json:"job_start"`
	IncludeDetails bool   `json:"include_details"`
}

// DiagnoseOutput is the compact diagnose result
type DiagnoseOutput struct {
	RunID       string                     `json:"run_id"`
	PartitionID string                     `json:"partition_id"`
	Failure     string                     `json:"failure"`
	RootCauses  []diagnosis.RootCauseChain `json:"root_causes"`
	Executed    int                        `json:"executed_checks"`
	Unmapped    []string                   `json:"unmapped_triggers"`
	Details     *diagnosis.Report          `json:"details,omitempty"`
}

// DiagnoseTool runs the full pipeline
type DiagnoseTool struct {
	backend Backend
}

// Execute runs the tool
func (t *DiagnoseTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var params DiagnoseInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if params.Failure == "" {
		return nil, errors.New("failure is required")
	}

	report, err := t.backend.Diagnose(ctx, api.Job{
		PartitionID:  params.PartitionID,
		SerialNumber: params.SerialNumber,
		JobNumber:    params.JobNumber,
		JobStart:     params.JobStart,
	}, params.Failure)
	if err != nil {
		return nil, err
	}

	out := &DiagnoseOutput{
		RunID:       report.RunID,
		PartitionID: report.PartitionID,
		Failure:     report.Failure,
		RootCauses:  report.Chains,
		Executed:    report.Executed,
		Unmapped:    report.Unmapped,
	}
	if params.IncludeDetails {
		out.Details = report
	}
	return out, nil
}

// ListFailuresTool lists failure modes
type ListFailuresTool struct {
	backend Backend
}

// Execute runs the tool
func (t *ListFailuresTool) Execute(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	labels, err := t.backend.FailureLabels(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"failures": labels, "count": len(labels)}, nil
}

// RunCheckInput is the argument object of the run_check tool
type RunCheckInput struct {
	Check       string `json:"check"`
	PartitionID string `json:"partition_id"`
	Channel     string `json:"channel"`
}

// RunCheckTool evaluates one check
type RunCheckTool struct {
	backend Backend
}

// Execute runs the tool
func (t *RunCheckTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var params RunCheckInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if params.Check == "" || params.PartitionID == "" {
		return nil, errors.New("check and partition_id are required")
	}

	result, err := t.backend.RunCheck(ctx, params.Check, params.PartitionID, params.Channel)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"check": params.Check, "partition_id": params.PartitionID, "result": result}, nil
}
