package entity

import (
	"fmt"
	"time"
)

// Step suhbat bosqichi (closed set)
type Step string

const (
	StepShopping                 Step = "shopping"
	StepWaitingName              Step = "WAITING_NAME"
	StepWaitingDNI               Step = "WAITING_DNI"
	StepWaitingAddress           Step = "WAITING_ADDRESS"
	StepWaitingFinalConfirmation Step = "WAITING_FINAL_CONFIRMATION"
	StepWaitingExistingData      Step = "WAITING_EXISTING_DATA_CONFIRMATION"
	StepProcessingCheckout       Step = "PROCESSING_CHECKOUT"
)

var allSteps = []Step{
	StepShopping,
	StepWaitingName,
	StepWaitingDNI,
	StepWaitingAddress,
	StepWaitingFinalConfirmation,
	StepWaitingExistingData,
	StepProcessingCheckout,
}

var stepTransitions = map[Step][]Step{
	StepShopping:                 {StepWaitingName, StepWaitingExistingData},
	StepWaitingName:              {StepWaitingDNI, StepShopping},
	StepWaitingDNI:               {StepWaitingAddress, StepShopping},
	StepWaitingAddress:           {StepWaitingFinalConfirmation, StepShopping},
	StepWaitingFinalConfirmation: {StepProcessingCheckout, StepWaitingName, StepShopping},
	StepWaitingExistingData:      {StepProcessingCheckout, StepWaitingName, StepShopping},
	StepProcessingCheckout:       {StepWaitingFinalConfirmation, StepShopping},
}

// ParseStep maps a stored tag back to a Step. Empty means shopping.
func ParseStep(raw string) (Step, error) {
	if raw == "" {
		return StepShopping, nil
	}
	for _, s := range allSteps {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStep, raw)
}

// CanTransition reports whether from → to is in the table.
func CanTransition(from, to Step) bool {
	for _, next := range stepTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsWizard reports whether the step belongs to the data-collection dialogue.
func (s Step) IsWizard() bool {
	return s != StepShopping && s != ""
}

// ClientData wizard davomida yig'iladigan ma'lumotlar
type ClientData struct {
	Name    string `json:"name,omitempty"`
	DNI     string `json:"dni,omitempty"`
	Address string `json:"address,omitempty"`
}

// Session mijozning joriy savati va bosqichi, telefon raqami bo'yicha.
// Version is bumped by the store on every successful write.
type Session struct {
	Phone      string     `json:"phone"`
	Items      []CartItem `json:"items"`
	Step       Step       `json:"conversation_step"`
	ClientData ClientData `json:"client_data"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Version    int64      `json:"version"`
}

// NewSession returns an empty shopping session.
func NewSession(phone string) *Session {
	return &Session{Phone: phone, Step: StepShopping}
}

// Advance moves the session to the next step if the table allows it.
func (s *Session) Advance(to Step) error {
	from := s.Step
	if from == "" {
		from = StepShopping
	}
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	s.Step = to
	return nil
}

// IsExpired reports whether the session has been idle longer than ttl.
func (s *Session) IsExpired(now time.Time, ttl time.Duration) bool {
	if s == nil || s.UpdatedAt.IsZero() {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Items = CloneItems(s.Items)
	return &out
}
