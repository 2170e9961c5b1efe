package review

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/verdictd/internal/assess"
	"github.com/fyrsmithlabs/verdictd/internal/delegate"
	"github.com/fyrsmithlabs/verdictd/internal/findings"
	"github.com/fyrsmithlabs/verdictd/internal/metrics"
	"github.com/fyrsmithlabs/verdictd/internal/trace"
	"github.com/fyrsmithlabs/verdictd/internal/workflow"
)

// intakeHandler records the run goals from the input.
func (r *Reviewer) intakeHandler() workflow.Handler {
	return workflow.HandlerFunc{For: workflow.PhaseIntake, Fn: func(ctx context.Context, wc *workflow.Context) (workflow.Phase, error) {
		frame := trace.NewFrame(string(workflow.PhaseIntake))
		frame.Goals = []string{fmt.Sprintf("review %d input(s) for defects worth blocking on", len(wc.Inputs))}
		frame.Checks = []string{fmt.Sprintf("%d specialist(s) registered", len(r.specialists()))}
		if len(wc.Inputs) == 0 {
			frame.Risks = append(frame.Risks, "no inputs supplied; run will terminate with an empty verdict")
		}
		frame.Note(trace.NewStep(trace.StepTransition, "inputs recorded", wc.Inputs...).
			WithNext(string(workflow.PhasePlanTodos)))
		frame.Decide("proceed to planning")
		if err := wc.Log.Add(frame); err != nil {
			return "", err
		}
		return workflow.PhasePlanTodos, nil
	}}
}

// planHandler turns each input into an evidence-linked todo.
func (r *Reviewer) planHandler() workflow.Handler {
	return workflow.HandlerFunc{For: workflow.PhasePlanTodos, Fn: func(ctx context.Context, wc *workflow.Context) (workflow.Phase, error) {
		frame := trace.NewFrame(string(workflow.PhasePlanTodos))

		for i, input := range wc.Inputs {
			todo := workflow.Todo{
				ID:        fmt.Sprintf("td-%d", i+1),
				Title:     fmt.Sprintf("investigate %s", input),
				Rationale: "input named by the review request",
				Evidence:  []string{input},
			}
			wc.Todos = append(wc.Todos, todo)
			frame.Note(trace.NewStep(trace.StepTool, fmt.Sprintf("planned %s", todo.ID), input))
		}

		frame.Decide(fmt.Sprintf("%d todo(s) planned", len(wc.Todos)))
		if err := wc.Log.Add(frame); err != nil {
			return "", err
		}
		return workflow.PhaseDelegate, nil
	}}
}

// delegateHandler snapshots pending todos into tasks and starts the batch.
// The suspension point for awaiting results lives in collect.
func (r *Reviewer) delegateHandler() workflow.Handler {
	return workflow.HandlerFunc{For: workflow.PhaseDelegate, Fn: func(ctx context.Context, wc *workflow.Context) (workflow.Phase, error) {
		frame := trace.NewFrame(string(workflow.PhaseDelegate))

		pending := wc.PendingTodos()
		if len(pending) == 0 {
			frame.Note(trace.NewStep(trace.StepGate, "no pending todos; skipping investigation").
				WithNext(string(workflow.PhaseEvaluate)))
			frame.Decide("nothing to delegate")
			if err := wc.Log.Add(frame); err != nil {
				return "", err
			}
			return workflow.PhaseEvaluate, nil
		}

		var tasks []delegate.Task
		for _, specialist := range r.specialists() {
			for _, todo := range pending {
				tasks = append(tasks, delegate.Task{
					ID:          fmt.Sprintf("%s-%s", todo.ID, specialist),
					Specialist:  specialist,
					Title:       todo.Title,
					Description: todo.Rationale,
					TodoIDs:     []string{todo.ID},
					Evidence:    append([]string(nil), todo.Evidence...),
				})
			}
		}
		for _, todo := range pending {
			wc.MarkDispatched(todo.ID)
		}

		r.pending = r.pool.Start(ctx, tasks, r.cfg.Concurrency, r.cfg.TaskTimeout)
		r.logger.Info(ctx, "batch dispatched",
			zap.Int("tasks", len(tasks)),
			zap.Int("todos", len(pending)))

		taskIDs := make([]string, len(tasks))
		for i, task := range tasks {
			taskIDs[i] = task.ID
		}
		frame.Note(trace.NewStep(trace.StepDelegate,
			fmt.Sprintf("dispatched %d task(s) across %d specialist(s)", len(tasks), len(r.specialists())),
			taskIDs...).WithNext(string(workflow.PhaseCollect)))
		frame.Decide(fmt.Sprintf("round %d under way", wc.Rounds+1))
		if err := wc.Log.Add(frame); err != nil {
			return "", err
		}
		return workflow.PhaseCollect, nil
	}}
}

// collectHandler awaits the batch and folds every result's findings into the
// canonical set. Partial findings from failed or timed-out tasks still count.
func (r *Reviewer) collectHandler() workflow.Handler {
	return workflow.HandlerFunc{For: workflow.PhaseCollect, Fn: func(ctx context.Context, wc *workflow.Context) (workflow.Phase, error) {
		frame := trace.NewFrame(string(workflow.PhaseCollect))

		if r.pending == nil {
			return "", fmt.Errorf("collect entered with no batch in flight")
		}
		results := r.pending.Wait()
		r.pending = nil

		var incoming []findings.Finding
		for _, res := range results {
			incoming = append(incoming, res.Findings...)
			step := trace.NewStep(trace.StepDelegate,
				fmt.Sprintf("task %s %s with %d finding(s)", res.TaskID, res.Status, len(res.Findings)))
			if res.Err != "" {
				step = trace.NewStep(trace.StepDelegate,
					fmt.Sprintf("task %s %s: %s (%d partial finding(s) kept)", res.TaskID, res.Status, res.Err, len(res.Findings)))
				step = step.WithConfidence(findings.ConfidenceLow)
			}
			frame.Note(step)
		}

		before := len(wc.Findings)
		wc.Findings = r.agg.Merge(wc.Findings, incoming)
		metrics.FindingsMerged.Add(float64(len(incoming)))

		frame.Decide(fmt.Sprintf("%d raw finding(s) merged; canonical set %d -> %d",
			len(incoming), before, len(wc.Findings)))
		if err := wc.Log.Add(frame); err != nil {
			return "", err
		}
		return workflow.PhaseConsolidate, nil
	}}
}

// consolidateHandler reconciles overlapping evidence: a finding corroborated
// by more than one specialist gains one confidence level.
func (r *Reviewer) consolidateHandler() workflow.Handler {
	return workflow.HandlerFunc{For: workflow.PhaseConsolidate, Fn: func(ctx context.Context, wc *workflow.Context) (workflow.Phase, error) {
		frame := trace.NewFrame(string(workflow.PhaseConsolidate))

		promoted := 0
		next := findings.NewSet()
		for key, f := range wc.Findings {
			if len(f.Owners) > 1 && !f.Confidence.AtLeast(findings.ConfidenceHigh) {
				bumped := f
				if f.Confidence == findings.ConfidenceLow {
					bumped.Confidence = findings.ConfidenceMedium
				} else {
					bumped.Confidence = findings.ConfidenceHigh
				}
				next[key] = bumped
				promoted++
				frame.Note(trace.NewStep(trace.StepGate,
					fmt.Sprintf("corroborated by %d specialists; confidence %s -> %s", len(f.Owners), f.Confidence, bumped.Confidence),
					f.Evidence...))
				continue
			}
			next[key] = f
		}
		wc.Findings = next

		if promoted == 0 {
			frame.Note(trace.NewStep(trace.StepGate, "no corroboration adjustments needed"))
		}
		frame.Decide(fmt.Sprintf("%d finding(s) consolidated, %d promoted", len(wc.Findings), promoted))
		if err := wc.Log.Add(frame); err != nil {
			return "", err
		}
		return workflow.PhaseEvaluate, nil
	}}
}

// evaluateHandler decides whether the evidence suffices. Low-confidence
// findings of at least medium severity earn one follow-up todo each; when a
// follow-up was already planned in a previous round, the gate closes and the
// run terminates.
func (r *Reviewer) evaluateHandler() workflow.Handler {
	return workflow.HandlerFunc{For: workflow.PhaseEvaluate, Fn: func(ctx context.Context, wc *workflow.Context) (workflow.Phase, error) {
		frame := trace.NewFrame(string(workflow.PhaseEvaluate))

		followUps := 0
		for _, f := range wc.Findings.Sorted() {
			if !f.Severity.AtLeast(findings.SeverityMedium) || f.Confidence != findings.ConfidenceLow {
				continue
			}
			id := fmt.Sprintf("fu-%s", f.ID)
			if wc.HasTodo(id) {
				continue
			}
			wc.Todos = append(wc.Todos, workflow.Todo{
				ID:        id,
				Title:     fmt.Sprintf("corroborate %s", f.Title),
				Rationale: fmt.Sprintf("severity %s finding held at low confidence", f.Severity),
				Evidence:  append([]string(nil), f.Evidence...),
			})
			followUps++
			frame.Note(trace.NewStep(trace.StepGate,
				fmt.Sprintf("%s needs corroboration before the verdict", f.ID), f.Evidence...).
				WithConfidence(findings.ConfidenceLow))
		}

		if followUps > 0 {
			frame.Note(trace.NewStep(trace.StepTransition,
				fmt.Sprintf("requesting round %d for %d follow-up(s)", wc.Rounds+2, followUps)).
				WithNext(string(workflow.PhaseDelegate)))
			frame.Decide("another investigation round warranted")
			if err := wc.Log.Add(frame); err != nil {
				return "", err
			}
			return workflow.PhaseDelegate, nil
		}

		frame.Note(trace.NewStep(trace.StepTransition, "evidence sufficient for a verdict").
			WithNext(string(workflow.PhaseDone)))
		frame.Decide("terminate and assess")
		if err := wc.Log.Add(frame); err != nil {
			return "", err
		}
		return workflow.PhaseDone, nil
	}}
}

// doneHandler produces the assessment exactly once.
func (r *Reviewer) doneHandler() workflow.Handler {
	return workflow.HandlerFunc{For: workflow.PhaseDone, Fn: func(ctx context.Context, wc *workflow.Context) (workflow.Phase, error) {
		frame := trace.NewFrame(string(workflow.PhaseDone))

		a := assess.Generate(wc.Findings)
		wc.Assessment = &a

		frame.Note(trace.NewStep(trace.StepStop,
			fmt.Sprintf("verdict %s at overall severity %s", a.Recommendation, a.OverallSeverity)))
		frame.Decide(a.Summary)
		if err := wc.Log.Add(frame); err != nil {
			return "", err
		}
		return workflow.PhaseDone, nil
	}}
}
