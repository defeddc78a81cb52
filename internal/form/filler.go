package form

import (
	"log/slog"
	"time"

	"github.com/kalambet/jobfill/internal/profile"
)

const (
	DefaultHighlight       = 2 * time.Second
	DefaultResumeHighlight = 3 * time.Second
	DefaultNotify          = 3 * time.Second

	// notifyFade is how long the slide-out animation runs before the
	// notification is removed.
	notifyFade = 300 * time.Millisecond

	filledBackground = "#e8f5e9"
	resumeBorder     = "2px solid #4caf50"

	linkedInPrefix = "https://linkedin.com/in/"
	gitHubPrefix   = "https://github.com/"
)

// syntheticEvents are dispatched after every write so page-side validation
// and reactive frameworks observe the new value.
var syntheticEvents = []string{"input", "change", "blur"}

// Options configures a Filler. Zero durations fall back to the defaults.
type Options struct {
	Patterns        PatternTable
	Highlight       time.Duration
	ResumeHighlight time.Duration
	Notify          time.Duration
	Scheduler       Scheduler
	Logger          *slog.Logger
}

// Filler writes profile values into the empty inputs of a page.
type Filler struct {
	patterns        PatternTable
	highlight       time.Duration
	resumeHighlight time.Duration
	notify          time.Duration
	sched           Scheduler
	logger          *slog.Logger
}

func NewFiller(opts Options) *Filler {
	f := &Filler{
		patterns:        opts.Patterns,
		highlight:       opts.Highlight,
		resumeHighlight: opts.ResumeHighlight,
		notify:          opts.Notify,
		sched:           opts.Scheduler,
		logger:          opts.Logger,
	}
	if f.patterns == nil {
		f.patterns = DefaultPatterns
	}
	if f.highlight <= 0 {
		f.highlight = DefaultHighlight
	}
	if f.resumeHighlight <= 0 {
		f.resumeHighlight = DefaultResumeHighlight
	}
	if f.notify <= 0 {
		f.notify = DefaultNotify
	}
	if f.sched == nil {
		f.sched = TimerScheduler{}
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fill runs one pass over page with p. Inputs that already hold a value are
// never touched. File inputs that look like resume uploads are highlighted
// but never given a file. The pass always completes; an empty Result means
// nothing matched.
//
// Fill is not re-entrant for a single page: callers must not run two passes
// over the same page concurrently.
func (f *Filler) Fill(page Page, p profile.Profile) Result {
	res := Result{FilledFields: []string{}}

	inputs := page.Inputs()
	for _, el := range inputs {
		if isTextCandidate(el) {
			f.fillText(el, p, &res)
		}
	}
	for _, el := range inputs {
		if typ, _ := el.Type(); typ == "file" && isResumeUpload(el) {
			f.highlightResume(el, &res)
		}
	}

	f.showNotice(page, res.Message())

	f.logger.Debug("fill pass complete", "inputs", len(inputs), "filled", res.FieldsFilledCount)
	return res
}

func isTextCandidate(el Element) bool {
	typ, ok := el.Type()
	if !ok {
		return true
	}
	switch typ {
	case "text", "email", "tel":
		return true
	}
	return false
}

func (f *Filler) fillText(el Element, p profile.Profile, res *Result) {
	cat := f.patterns.ClassifyElement(el)
	if cat == CategoryNone {
		return
	}
	if el.Value() != "" {
		return
	}
	v := valueFor(cat, p)
	if v == "" {
		f.logger.Debug("no profile value for field", "category", cat.String())
		return
	}

	el.SetValue(v)
	for _, ev := range syntheticEvents {
		el.Dispatch(ev)
	}
	res.add(f.patterns.Label(cat))

	el.SetStyle("background-color", filledBackground)
	f.sched.AfterFunc(f.highlight, func() { el.SetStyle("background-color", "") })
}

func (f *Filler) highlightResume(el Element, res *Result) {
	el.SetStyle("border", resumeBorder)
	res.add(ResumeLabel)
	f.sched.AfterFunc(f.resumeHighlight, func() { el.SetStyle("border", "") })
}

func (f *Filler) showNotice(page Page, msg string) {
	n := page.Notify(msg)
	if n == nil {
		return
	}
	f.sched.AfterFunc(f.notify, func() {
		n.SetStyle("animation", "slideOut 0.3s ease-out")
		f.sched.AfterFunc(notifyFade, n.Remove)
	})
}

func valueFor(c Category, p profile.Profile) string {
	switch c {
	case CategoryName:
		return p.Name
	case CategoryFirstName:
		return p.GivenName()
	case CategoryLastName:
		return p.FamilyName()
	case CategoryEmail:
		return p.Email
	case CategoryPhone:
		return p.Phone
	case CategoryLocation:
		return p.Location
	case CategoryLinkedIn:
		if p.LinkedIn == "" {
			return ""
		}
		return linkedInPrefix + p.LinkedIn
	case CategoryGitHub:
		if p.GitHub == "" {
			return ""
		}
		return gitHubPrefix + p.GitHub
	case CategoryWorkAuth:
		return p.WorkAuthorization()
	}
	return ""
}
