package api

import (
	"net/http"

	"github.com/moolen/troubleshooter/internal/diagnosis"
	"github.com/moolen/troubleshooter/internal/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type handlers struct {
	service *Service
	logger  *logging.Logger
	tracer  trace.Tracer
}

// RootCausesResponse is the body of /v1/root-causes
type RootCausesResponse struct {
	RunID       string                     `json:"run_id"`
	PartitionID string                     `json:"partition_id"`
	Failure     string                     `json:"failure"`
	Chains      []diagnosis.RootCauseChain `json:"root_causes"`
}

func jobFromQuery(r *http.Request) Job {
	q := r.URL.Query()
	return Job{
		PartitionID:  q.Get("partition_id"),
		SerialNumber: q.Get("serial_number"),
		JobNumber:    q.Get("job_number"),
		JobStart:     q.Get("job_start"),
	}
}

func (h *handlers) fail(w http.ResponseWriter, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed: %v", err)
	}
	WriteError(w, status, code, err.Error())
}

func (h *handlers) runDiagnosis(w http.ResponseWriter, r *http.Request, spanName string) (*diagnosis.Report, bool) {
	ctx, span := h.tracer.Start(r.Context(), spanName)
	defer span.End()

	failure := r.URL.Query().Get("failure")
	span.SetAttributes(attribute.String("failure", failure))

	report, err := h.service.Diagnose(ctx, jobFromQuery(r), failure)
	if err != nil {
		h.fail(w, span, err)
		return nil, false
	}
	span.SetAttributes(attribute.String("run_id", report.RunID), attribute.Int("chains", len(report.Chains)))
	return report, true
}

func (h *handlers) diagnose(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runDiagnosis(w, r, "api.diagnose")
	if !ok {
		return
	}
	WriteSuccess(w, report)
}

func (h *handlers) rootCauses(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runDiagnosis(w, r, "api.rootCauses")
	if !ok {
		return
	}
	WriteSuccess(w, RootCausesResponse{
		RunID:       report.RunID,
		PartitionID: report.PartitionID,
		Failure:     report.Failure,
		Chains:      report.Chains,
	})
}

func (h *handlers) failures(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "api.failures")
	defer span.End()

	labels, err := h.service.FailureLabels(ctx)
	if err != nil {
		h.fail(w, span, err)
		return
	}
	WriteSuccess(w, map[string][]string{"failures": labels})
}

func (h *handlers) choices(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "api.choices")
	defer span.End()

	q := r.URL.Query()
	values, err := h.service.Choices(ctx, q.Get("field"), q.Get("parent"))
	if err != nil {
		h.fail(w, span, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"field": q.Get("field"), "choices": values})
}

func (h *handlers) partition(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "api.partition")
	defer span.End()

	job := jobFromQuery(r)
	job.PartitionID = ""
	id, err := h.service.ResolvePartition(ctx, job)
	if err != nil {
		h.fail(w, span, err)
		return
	}
	WriteSuccess(w, map[string]string{"partition_id": id})
}

func (h *handlers) check(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "api.check")
	defer span.End()

	name := r.PathValue("name")
	q := r.URL.Query()
	span.SetAttributes(attribute.String("check", name))

	channel := q.Get("triple_subject")
	if q.Get("partition_id") == "" || channel == "" {
		h.fail(w, span, NewValidationError("partition_id and triple_subject are required"))
		return
	}
	result, err := h.service.RunCheck(ctx, name, q.Get("partition_id"), channel)
	if err != nil {
		h.fail(w, span, err)
		return
	}
	WriteSuccess(w, map[string]bool{"result": result})
}
