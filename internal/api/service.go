package api

import (
	"context"
	"fmt"

	"github.com/moolen/troubleshooter/internal/checks"
	"github.com/moolen/troubleshooter/internal/diagnosis"
	"github.com/moolen/troubleshooter/internal/warehouse"
)

// Fleet reads fleet metadata
type Fleet interface {
	Choices(ctx context.Context, field, parent string) ([]string, error)
	LookupPartition(ctx context.Context, serialNumber, jobNumber, jobStart string) (string, bool, error)
}

// CheckSource resolves checks by canonical name
type CheckSource interface {
	Get(name string) (checks.Check, error)
}

// Job identifies a partition either directly or through fleet metadata
type Job struct {
	PartitionID  string `json:"partition_id,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	JobNumber    string `json:"job_number,omitempty"`
	JobStart     string `json:"job_start,omitempty"`
}

// Service is the troubleshooting surface shared by the REST handlers, the MCP
// tools and the CLI.
type Service struct {
	runner *diagnosis.Runner
	conns  diagnosis.ConnProvider
	checks CheckSource
	fleet  Fleet
}

// NewService creates a service. fleet may be nil when no warehouse is configured.
func NewService(runner *diagnosis.Runner, conns diagnosis.ConnProvider, checkSource CheckSource, fleet Fleet) *Service {
	return &Service{runner: runner, conns: conns, checks: checkSource, fleet: fleet}
}

// Diagnose runs the pipeline for failure on the job's partition
func (s *Service) Diagnose(ctx context.Context, job Job, failure string) (*diagnosis.Report, error) {
	if failure == "" {
		return nil, NewValidationError("failure is required")
	}
	partitionID, err := s.ResolvePartition(ctx, job)
	if err != nil {
		return nil, err
	}
	return s.runner.Diagnose(ctx, partitionID, failure)
}

// FailureLabels lists the failure modes of the knowledge graph
func (s *Service) FailureLabels(ctx context.Context) ([]string, error) {
	return s.runner.FailureLabels(ctx)
}

// RunCheck evaluates one named check on its own connection
func (s *Service) RunCheck(ctx context.Context, name, partitionID, channel string) (bool, error) {
	if partitionID == "" {
		return false, NewValidationError("partition_id is required")
	}
	check, err := s.checks.Get(name)
	if err != nil {
		return false, err
	}
	if s.conns == nil {
		return false, fmt.Errorf("%w: no warehouse configured", diagnosis.ErrConnectionUnavailable)
	}
	conn, err := s.conns.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", diagnosis.ErrConnectionUnavailable, err)
	}
	defer conn.Close()

	result, err := check.Evaluate(ctx, conn, partitionID, channel)
	if err != nil {
		return false, &diagnosis.CheckError{Check: name, Channel: channel, Err: err}
	}
	return result, nil
}

// Choices lists the distinct values of a fleet field
func (s *Service) Choices(ctx context.Context, field, parent string) ([]string, error) {
	switch field {
	case warehouse.FieldSerialNumber, warehouse.FieldJobNumber, warehouse.FieldJobStart:
	default:
		return nil, NewValidationError("field must be one of %s, %s, %s",
			warehouse.FieldSerialNumber, warehouse.FieldJobNumber, warehouse.FieldJobStart)
	}
	if s.fleet == nil {
		return nil, fmt.Errorf("%w: no warehouse configured", diagnosis.ErrConnectionUnavailable)
	}
	values, err := s.fleet.Choices(ctx, field, parent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", diagnosis.ErrConnectionUnavailable, err)
	}
	return values, nil
}

// ResolvePartition returns job.PartitionID, or looks it up from the serial
// number, job number and job start.
func (s *Service) ResolvePartition(ctx context.Context, job Job) (string, error) {
	if job.PartitionID != "" {
		return job.PartitionID, nil
	}
	if job.SerialNumber == "" || job.JobNumber == "" || job.JobStart == "" {
		return "", NewValidationError("partition_id, or serial_number with job_number and job_start, is required")
	}
	start, err := warehouse.NormalizeJobStart(job.JobStart)
	if err != nil {
		return "", NewValidationError("%v", err)
	}
	if s.fleet == nil {
		return "", fmt.Errorf("%w: no warehouse configured", diagnosis.ErrConnectionUnavailable)
	}
	id, found, err := s.fleet.LookupPartition(ctx, job.SerialNumber, job.JobNumber, start)
	if err != nil {
		return "", fmt.Errorf("%w: %v", diagnosis.ErrConnectionUnavailable, err)
	}
	if !found {
		return "", fmt.Errorf("%w: serial %s, job %s, start %s", ErrPartitionNotFound, job.SerialNumber, job.JobNumber, start)
	}
	return id, nil
}
