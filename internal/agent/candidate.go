// internal/agent/candidate.go
package agent

import (
	"fmt"
	"strings"
)

// ActionKind names one entry of the closed action vocabulary.
type ActionKind string

const (
	KindClickButton          ActionKind = "click_button"
	KindClickLink            ActionKind = "click_link"
	KindFillSignupForm       ActionKind = "fill_signup_form"
	KindFillRegistrationForm ActionKind = "fill_registration_form"
	KindFillLoginForm        ActionKind = "fill_login_form"
	KindTryWrongLogin        ActionKind = "try_wrong_login"
	KindTryCorrectLogin      ActionKind = "try_correct_login"
	KindTryEmptyLogin        ActionKind = "try_empty_login"
	KindNavigateToLogin      ActionKind = "navigate_to_login"
	KindObservePage          ActionKind = "observe_page"
)

// IsLogin reports whether the kind is part of a login flow.
func (k ActionKind) IsLogin() bool {
	return strings.Contains(string(k), "login")
}

// Candidate is a proposed action. The set of implementations is closed:
// ClickButton, ClickLink, FillForm, LoginAttempt, NavigateToLogin and ObservePage.
type Candidate interface {
	Kind() ActionKind
	Target() string
	candidate()
}

// ClickButton clicks the button whose visible text is Label.
type ClickButton struct{ Label string }

// ClickLink follows the link whose visible text is Text.
type ClickLink struct{ Text string }

// FormName selects which form a FillForm candidate targets.
type FormName string

const (
	FormSignup       FormName = "signup"
	FormRegistration FormName = "registration"
	FormLogin        FormName = "login"
)

// FillForm fills the visible inputs of a form with generated values and submits it.
type FillForm struct {
	Form FormName
	Note string
}

// LoginMode selects which credentials a LoginAttempt submits.
type LoginMode string

const (
	LoginWrong   LoginMode = "wrong"
	LoginCorrect LoginMode = "correct"
	LoginEmpty   LoginMode = "empty"
)

// LoginAttempt submits the login form with the credentials chosen by Mode.
type LoginAttempt struct {
	Mode LoginMode
	Note string
}

// NavigateToLogin looks for a login entry point on the page.
type NavigateToLogin struct{ Note string }

// ObservePage is a marker meaning the proposer sees nothing worth doing.
type ObservePage struct{ Note string }

func (c ClickButton) Kind() ActionKind { return KindClickButton }
func (c ClickButton) Target() string { return c.Label }
func (ClickButton) candidate() {}

func (c ClickLink) Kind() ActionKind { return KindClickLink }
func (c ClickLink) Target() string { return c.Text }
func (ClickLink) candidate() {}

func (c FillForm) Kind() ActionKind { return ActionKind("fill_" + string(c.Form) + "_form") }
func (c FillForm) Target() string { return c.Note }
func (FillForm) candidate() {}

func (c LoginAttempt) Kind() ActionKind { return ActionKind("try_" + string(c.Mode) + "_login") }
func (c LoginAttempt) Target() string { return c.Note }
func (LoginAttempt) candidate() {}

func (c NavigateToLogin) Kind() ActionKind { return KindNavigateToLogin }
func (c NavigateToLogin) Target() string { return c.Note }
func (NavigateToLogin) candidate() {}

func (c ObservePage) Kind() ActionKind { return KindObservePage }
func (c ObservePage) Target() string { return c.Note }
func (ObservePage) candidate() {}

// FormatCandidate encodes c in the "kind:target" wire form.
func FormatCandidate(c Candidate) string {
	return string(c.Kind()) + ":" + c.Target()
}

// ParseCandidate decodes a "kind:target" string. Whitespace around the kind
// and the target is trimmed. Kinds outside the vocabulary are rejected.
func ParseCandidate(s string) (Candidate, error) {
	kind, target, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedCandidate, s)
	}
	target = strings.TrimSpace(target)

	switch ActionKind(strings.TrimSpace(kind)) {
	case KindClickButton:
		return ClickButton{Label: target}, nil
	case KindClickLink:
		return ClickLink{Text: target}, nil
	case KindFillSignupForm:
		return FillForm{Form: FormSignup, Note: target}, nil
	case KindFillRegistrationForm:
		return FillForm{Form: FormRegistration, Note: target}, nil
	case KindFillLoginForm:
		return FillForm{Form: FormLogin, Note: target}, nil
	case KindTryWrongLogin:
		return LoginAttempt{Mode: LoginWrong, Note: target}, nil
	case KindTryCorrectLogin:
		return LoginAttempt{Mode: LoginCorrect, Note: target}, nil
	case KindTryEmptyLogin:
		return LoginAttempt{Mode: LoginEmpty, Note: target}, nil
	case KindNavigateToLogin:
		return NavigateToLogin{Note: target}, nil
	case KindObservePage:
		return ObservePage{Note: target}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, strings.TrimSpace(kind))
	}
}
