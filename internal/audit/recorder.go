package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staffhub.org/internal/auth"
	"staffhub.org/internal/ids"
	"staffhub.org/internal/obs"
)

// ActorSystem is recorded when no caller is authenticated; ActorUnknown when
// the authenticated name has no matching active identity record. The
// cross-check keeps entries from crediting a revoked principal name that a
// later account reused.
const (
	ActorSystem  = "system"
	ActorUnknown = "unknown"
)

// identityLookup is the slice of the user store the recorder needs.
type identityLookup interface {
	FindActiveByUsername(ctx context.Context, username string) (*auth.User, error)
}

// Recorder writes audit entries for a fixed, pre-registered set of monitored
// operations. It is attached after the operation has already completed, so
// nothing here may alter or delay the operation's own outcome.
type Recorder struct {
	store     Store
	users     identityLookup
	monitored map[string]struct{}
	now       func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderClock overrides the time source. Intended for tests.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder wires the recorder to its entry store and the identity store
// used for the actor cross-check.
func NewRecorder(store Store, users identityLookup, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:     store,
		users:     users,
		monitored: make(map[string]struct{}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Monitor registers operations whose completion produces an audit entry.
// Classification is by naming convention over the final name segment:
// delete* maps to DELETE, create* to CREATE, anything else to UPDATE.
func (r *Recorder) Monitor(operations ...string) {
	for _, op := range operations {
		r.monitored[op] = struct{}{}
	}
}

// RecordIfMutation appends an entry when operation is in the monitored set.
// It never fails visibly: any fault in classification, identifier
// extraction, actor resolution or the append itself is logged and swallowed.
func (r *Recorder) RecordIfMutation(ctx context.Context, operation string, subject any) {
	if _, ok := r.monitored[operation]; !ok {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logFailure(operation, fmt.Errorf("panic: %v", rec))
		}
	}()

	entry := &Entry{
		ID:         ids.New(),
		Action:     classify(operation),
		EntityName: entityName(subject),
		EntityID:   entityID(subject),
		Username:   r.actor(ctx),
		CreatedAt:  r.now().UTC(),
	}
	if err := r.store.Append(ctx, entry); err != nil {
		logFailure(operation, err)
	}
}

func classify(operation string) Action {
	verb := operation
	if i := strings.LastIndexByte(operation, '.'); i >= 0 {
		verb = operation[i+1:]
	}
	switch {
	case strings.HasPrefix(verb, "delete"):
		return ActionDelete
	case strings.HasPrefix(verb, "create"):
		return ActionCreate
	default:
		return ActionUpdate
	}
}

func entityName(subject any) string {
	if subject == nil {
		return ""
	}
	name := fmt.Sprintf("%T", subject)
	name = strings.TrimLeft(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func entityID(subject any) string {
	if ident, ok := subject.(Identifiable); ok {
		return ident.AuditID()
	}
	return ""
}

func (r *Recorder) actor(ctx context.Context) string {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok || principal.Username == "" {
		return ActorSystem
	}
	if r.users == nil {
		return principal.Username
	}
	if _, err := r.users.FindActiveByUsername(ctx, principal.Username); err != nil {
		return ActorUnknown
	}
	return principal.Username
}

func logFailure(operation string, err error) {
	obs.LogEntry(map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     "error",
		"msg":       "audit_append_failed",
		"operation": operation,
		"error":     err.Error(),
	})
}
