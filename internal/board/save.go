package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oakmontcap/lendboard/internal/client"
	"github.com/oakmontcap/lendboard/internal/events"
	"github.com/oakmontcap/lendboard/internal/model"
	"github.com/oakmontcap/lendboard/internal/reconcile"
	"github.com/oakmontcap/lendboard/internal/transform"
)

// ValidationError rejects a save before any network call is made.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// saveRequests is the routed, validated form of a change set.
type saveRequests struct {
	project *client.UpdateProjectRequest
	con     *client.UpdateLoanRequest
	perm    *client.UpdateLoanRequest
}

// Save applies field changes to a row. Validation happens entirely up front;
// the project, construction-loan, and permanent-loan updates are then issued
// concurrently and awaited jointly. Partial failures are reported, not rolled
// back. On success the single row is rebuilt from the updated entities.
func (b *Board) Save(ctx context.Context, keyValue string, changes map[string]string, actor string) (model.JoinedRow, error) {
	row, err := b.Row(keyValue)
	if err != nil {
		return model.JoinedRow{}, err
	}
	if len(changes) == 0 {
		return row, ValidationError("no changes supplied")
	}
	if row.Key.Kind == model.KeySynthetic || row.Banking == nil {
		return row, ValidationError("row has no backend project and cannot be saved")
	}

	reqs, err := routeChanges(changes, row.Banking)
	if err != nil {
		return row, err
	}

	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, f)
	}
	b.edits.mark(keyValue, fields...)

	projectID := row.Banking.ProjectID

	var (
		wg                       sync.WaitGroup
		projErr, conErr, permErr error
		updProject               *model.Project
		updCon, updPerm          *model.Loan
	)
	if reqs.project != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			updProject, projErr = b.backend.UpdateProject(ctx, projectID, reqs.project)
			if projErr != nil {
				projErr = fmt.Errorf("update project: %w", projErr)
			}
		}()
	}
	if reqs.con != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			updCon, conErr = b.backend.UpdateLoan(ctx, projectID, model.PhaseConstruction, reqs.con)
			if conErr != nil {
				conErr = fmt.Errorf("update construction loan: %w", conErr)
			}
		}()
	}
	if reqs.perm != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			updPerm, permErr = b.backend.UpdateLoan(ctx, projectID, model.PhasePermanent, reqs.perm)
			if permErr != nil {
				permErr = fmt.Errorf("update permanent loan: %w", permErr)
			}
		}()
	}
	wg.Wait()

	if err := errors.Join(projErr, conErr, permErr); err != nil {
		b.recordSaveFailure(ctx, row.Key, actor, err)
		return row, err
	}

	updated := b.rebuildRow(keyValue, projectID, updProject, updCon, updPerm)
	b.edits.clear(keyValue)
	b.recordSaveSuccess(ctx, updated.Key, actor, changes)

	return updated, nil
}

// rebuildRow folds the updated entities back into the cache and rebuilds the
// single affected row without touching the rest of the board.
func (b *Board) rebuildRow(keyValue string, projectID int64, proj *model.Project, con, perm *model.Loan) model.JoinedRow {
	b.mu.Lock()
	defer b.mu.Unlock()

	if proj != nil {
		for i := range b.entities.Projects {
			if b.entities.Projects[i].ID == projectID {
				b.entities.Projects[i] = *proj
				break
			}
		}
	}
	for _, l := range []*model.Loan{con, perm} {
		if l == nil {
			continue
		}
		for i := range b.entities.Loans {
			if b.entities.Loans[i].ProjectID == projectID && b.entities.Loans[i].Phase == l.Phase {
				b.entities.Loans[i] = *l
				break
			}
		}
	}

	idx := -1
	for i := range b.rows {
		if b.rows[i].Key.Value == keyValue {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.JoinedRow{}
	}

	var project *model.Project
	for i := range b.entities.Projects {
		if b.entities.Projects[i].ID == projectID {
			project = &b.entities.Projects[i]
			break
		}
	}
	if project == nil {
		return b.rows[idx]
	}

	br := transform.BankingRow(project, b.entities)

	var status []model.StatusRow
	if b.rows[idx].Status != nil {
		status = []model.StatusRow{*b.rows[idx].Status}
	}
	rebuilt := reconcile.Reconcile(status, []model.BankingRow{br})

	// A rename can break the feed pairing; keep the banking-backed row and
	// let the next full refresh re-pair.
	for i := range rebuilt {
		if rebuilt[i].Banking != nil {
			// Rows hands the backing array to readers outside the lock;
			// swap in a copy instead of writing in place.
			rows := make([]model.JoinedRow, len(b.rows))
			copy(rows, b.rows)
			rows[idx] = rebuilt[i]
			b.rows = rows
			break
		}
	}
	return b.rows[idx]
}

func (b *Board) recordSaveSuccess(ctx context.Context, key model.RowKey, actor string, changes map[string]string) {
	changed := make(map[string]any, len(changes))
	for k, v := range changes {
		changed[k] = v
	}
	if err := b.pub.Publish(ctx, events.TopicRowSaved, events.RowSaved{
		Key:     key,
		Actor:   actor,
		Changes: changed,
	}); err != nil {
		slog.Warn("publish row.saved failed", "error", err)
	}
	b.recordEvent(ctx, events.TopicRowSaved, key, actor, changes)
}

func (b *Board) recordSaveFailure(ctx context.Context, key model.RowKey, actor string, saveErr error) {
	if err := b.pub.Publish(ctx, events.TopicRowSaveFailed, events.RowSaveFailed{
		Key:    key,
		Actor:  actor,
		Reason: saveErr.Error(),
	}); err != nil {
		slog.Warn("publish row.save_failed failed", "error", err)
	}
	b.recordEvent(ctx, events.TopicRowSaveFailed, key, actor, map[string]string{"reason": saveErr.Error()})
}

func (b *Board) recordEvent(ctx context.Context, topic string, key model.RowKey, actor string, payload any) {
	if b.store == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("marshal row event payload failed", "error", err)
		raw = nil
	}
	if err := b.store.RecordRowEvent(ctx, &model.RowEvent{
		Topic:   topic,
		Key:     key,
		Actor:   actor,
		Payload: raw,
	}); err != nil {
		slog.Warn("record row event failed", "topic", topic, "error", err)
	}
}

// routeChanges validates every field and splits the change set into the
// project, construction-loan, and permanent-loan requests.
func routeChanges(changes map[string]string, banking *model.BankingRow) (*saveRequests, error) {
	reqs := &saveRequests{}
	for field, value := range changes {
		switch {
		case strings.HasPrefix(field, "Con"):
			if banking.Construction == nil {
				return nil, ValidationError("project has no construction loan")
			}
			if reqs.con == nil {
				reqs.con = &client.UpdateLoanRequest{}
			}
			if err := setLoanField(reqs.con, strings.TrimPrefix(field, "Con"), value); err != nil {
				return nil, err
			}
		case strings.HasPrefix(field, "Perm"):
			if banking.Permanent == nil {
				return nil, ValidationError("project has no permanent loan")
			}
			if reqs.perm == nil {
				reqs.perm = &client.UpdateLoanRequest{}
			}
			if err := setLoanField(reqs.perm, strings.TrimPrefix(field, "Perm"), value); err != nil {
				return nil, err
			}
		default:
			if reqs.project == nil {
				reqs.project = &client.UpdateProjectRequest{}
			}
			if err := setProjectField(reqs.project, field, value); err != nil {
				return nil, err
			}
		}
	}
	return reqs, nil
}

func setProjectField(req *client.UpdateProjectRequest, field, value string) error {
	switch field {
	case "ProjectName":
		req.Name = &value
	case "City":
		req.City = &value
	case "State":
		req.State = &value
	case "Region":
		req.Region = &value
	case "ProductType":
		req.ProductType = &value
	case "Units":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return ValidationError(fmt.Sprintf("invalid units %q", value))
		}
		req.Units = &n
	case "DealSequence":
		n, err := strconv.Atoi(value)
		if err != nil {
			return ValidationError(fmt.Sprintf("invalid deal sequence %q", value))
		}
		req.DealSequence = &n
	case "Stage":
		stage := model.Stage(value)
		if !stage.IsValid() {
			return ValidationError(fmt.Sprintf("invalid stage %q", value))
		}
		req.Stage = &stage
	default:
		return ValidationError(fmt.Sprintf("unknown field %q", field))
	}
	return nil
}

func setLoanField(req *client.UpdateLoanRequest, field, value string) error {
	switch field {
	case "Amount":
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return ValidationError(fmt.Sprintf("invalid amount %q", value))
		}
		req.Amount = &d
	case "Rate":
		req.Rate = &value
	case "LenderID":
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return ValidationError(fmt.Sprintf("invalid lender id %q", value))
		}
		req.LenderID = &id
	case "ClosingDate", "MaturityDate", "IOMaturityDate":
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return ValidationError(fmt.Sprintf("invalid date %q", value))
		}
		switch field {
		case "ClosingDate":
			req.ClosingDate = &t
		case "MaturityDate":
			req.MaturityDate = &t
		default:
			req.IOMaturityDate = &t
		}
	default:
		return ValidationError(fmt.Sprintf("unknown loan field %q", field))
	}
	return nil
}
