// Package bridge carries the action-discriminated messages exchanged between
// the CLI, the HTTP API and the MCP tools, and runs fill passes on their
// behalf.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/jobfill/internal/form"
	"github.com/kalambet/jobfill/internal/form/htmldoc"
	"github.com/kalambet/jobfill/internal/profile"
	"github.com/kalambet/jobfill/internal/storage"
)

const (
	ActionGetUserData = "getUserData"
	ActionFillForm    = "fillForm"
)

// ErrUnknownAction is returned by Handle for an unrecognised action.
var ErrUnknownAction = errors.New("unknown action")

// Request is a command message. HTML and Source are only read by fillForm.
type Request struct {
	Action string `json:"action"`
	HTML   string `json:"html,omitempty"`
	Source string `json:"source,omitempty"`
}

// Response answers a Request. Exactly one of UserData or the fill fields is
// populated, depending on the action.
type Response struct {
	UserData *profile.Profile `json:"userData,omitempty"`
	*FillResponse
}

// FillResponse is the result of a fillForm action.
type FillResponse struct {
	Success bool `json:"success"`
	form.Result
	HTML    string `json:"html"`
	Message string `json:"message"`
	RunID   string `json:"runId,omitempty"`
}

// ProfileSource supplies the profile for a fill pass.
type ProfileSource interface {
	GetProfile() profile.Profile
}

// History records completed fill runs.
type History interface {
	SaveFillRun(r storage.FillRun) error
}

type Bridge struct {
	profiles ProfileSource
	filler   *form.Filler
	history  History // optional
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Bridge. history may be nil, in which case runs are not
// recorded.
func New(profiles ProfileSource, filler *form.Filler, history History) *Bridge {
	return &Bridge{
		profiles: profiles,
		filler:   filler,
		history:  history,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// Handle dispatches req by its action.
func (b *Bridge) Handle(ctx context.Context, req Request) (Response, error) {
	switch req.Action {
	case ActionGetUserData:
		p := b.profiles.GetProfile()
		return Response{UserData: &p}, nil
	case ActionFillForm:
		fr, err := b.FillForm(ctx, req.HTML, req.Source)
		if err != nil {
			return Response{}, err
		}
		return Response{FillResponse: &fr}, nil
	default:
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
}

// FillForm parses page, fills it with the current profile and returns the
// result together with the filled page rendered back to HTML.
func (b *Bridge) FillForm(ctx context.Context, page, source string) (FillResponse, error) {
	if err := ctx.Err(); err != nil {
		return FillResponse{}, err
	}

	doc, err := htmldoc.ParseString(page)
	if err != nil {
		return FillResponse{}, fmt.Errorf("parsing page: %w", err)
	}

	p := b.profiles.GetProfile()
	res := b.filler.Fill(doc, p)

	out, err := doc.HTML()
	if err != nil {
		return FillResponse{}, fmt.Errorf("rendering page: %w", err)
	}

	return FillResponse{
		Success: true,
		Result:  res,
		HTML:    out,
		Message: res.Message(),
		RunID:   b.record(source, res),
	}, nil
}

// record stores the run in history. Failures are logged and never fail the
// fill.
func (b *Bridge) record(source string, res form.Result) string {
	if b.history == nil {
		return ""
	}
	run := storage.FillRun{
		ID:           uuid.New().String(),
		CreatedAt:    b.now().UTC(),
		Source:       source,
		FilledFields: res.FilledFields,
		FilledCount:  res.FieldsFilledCount,
	}
	if err := b.history.SaveFillRun(run); err != nil {
		b.logger.Warn("could not record fill run", "source", source, "error", err)
		return ""
	}
	return run.ID
}

// StatusLine renders the one-line outcome shown to the user after a fill.
func StatusLine(resp *FillResponse, err error) string {
	switch {
	case err != nil:
		return "❌ Error: " + err.Error()
	case resp != nil && resp.Success && resp.FieldsFilledCount > 0:
		return fmt.Sprintf("✅ Form filled! Fields: %d", resp.FieldsFilledCount)
	default:
		return "⚠️ No form fields found on this page"
	}
}

// FieldList renders the filled labels one per line, each prefixed with a
// check mark.
func FieldList(fields []string) string {
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString("✓ ")
		sb.WriteString(f)
		sb.WriteByte('\n')
	}
	return sb.String()
}
