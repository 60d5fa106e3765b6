package domain

// Flow names a multi-step wizard
type Flow string

const (
	FlowNone    Flow = ""
	FlowAdd     Flow = "add"
	FlowEdit    Flow = "edit"
	FlowCheck   Flow = "check"
	FlowRequest Flow = "request"
	FlowSearch  Flow = "search"
)

// StepKind is the kind of input the active step is waiting for
type StepKind string

const (
	StepNone                 StepKind = ""
	StepAwaitingLogin        StepKind = "awaiting_login"
	StepAwaitingPassword     StepKind = "awaiting_password"
	StepAwaitingExtra        StepKind = "awaiting_extra"
	StepAwaitingConfirmation StepKind = "awaiting_confirmation"
)

// ExtraKind qualifies StepAwaitingExtra
type ExtraKind string

const (
	ExtraNone    ExtraKind = ""
	ExtraGames   ExtraKind = "games"
	ExtraRequest ExtraKind = "request"
	ExtraQuery   ExtraKind = "query"
	ExtraTarget  ExtraKind = "target"
	ExtraBatch   ExtraKind = "batch"
)

// Step is the active wizard stage of a user
type Step struct {
	Flow  Flow
	Kind  StepKind
	Extra ExtraKind
}

// IsNone reports whether no step is active
func (s Step) IsNone() bool {
	return s.Kind == StepNone
}

// String returns a compact representation for logs
func (s Step) String() string {
	if s.IsNone() {
		return "none"
	}
	out := string(s.Flow) + "/" + string(s.Kind)
	if s.Extra != ExtraNone {
		out += "(" + string(s.Extra) + ")"
	}
	return out
}

// Draft holds data collected across the steps of a flow
type Draft struct {
	Login   string
	Secret  string
	Games   []string
	AddedBy int64

	// Target is the login of the record being edited
	Target string
}

// Clone returns a deep copy of the draft
func (d Draft) Clone() Draft {
	out := d
	if d.Games != nil {
		out.Games = append([]string(nil), d.Games...)
	}
	return out
}

// Account builds the record the draft describes
func (d Draft) Account() Account {
	return Account{
		Login:   d.Login,
		Secret:  d.Secret,
		Games:   append([]string(nil), d.Games...),
		AddedBy: d.AddedBy,
	}
}

// DraftFromAccount pre-fills a draft for editing an existing record
func DraftFromAccount(a Account) Draft {
	return Draft{
		Login:   a.Login,
		Secret:  a.Secret,
		Games:   append([]string(nil), a.Games...),
		AddedBy: a.AddedBy,
		Target:  a.Login,
	}
}
