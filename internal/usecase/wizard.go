package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yourusername/quote-bot/internal/domain/entity"
)

const (
	maxNameWords  = 6
	minDNILength  = 5
	maxDNILength  = 15
	minAddressLen = 5
)

// Wizard mijoz ma'lumotlarini bosqichma-bosqich yig'adi
type Wizard struct {
	cart *CartService
	kw   Keywords
}

// NewWizard yangi Wizard
func NewWizard(cart *CartService, kw Keywords) *Wizard {
	return &Wizard{cart: cart, kw: kw}
}

// Handle processes text for the session's current step. checkout is true
// when the customer confirmed and the quote should be created.
func (w *Wizard) Handle(ctx context.Context, session *entity.Session, text string) (reply *entity.Reply, checkout bool, err error) {
	text = strings.TrimSpace(text)
	norm := normalizeRunes(text)

	switch session.Step {
	case entity.StepWaitingName:
		if len(strings.Fields(text)) > maxNameWords || hasAnyPhrase(norm, w.kw.NameReject) {
			return &entity.Reply{Text: msgInvalidName, Action: ActionWizardInvalid}, false, nil
		}
		session.ClientData.Name = text
		return w.advance(ctx, session, entity.StepWaitingDNI, msgAskDNI, ActionWizardName)

	case entity.StepWaitingDNI:
		if n := utf8.RuneCountInString(text); n < minDNILength || n > maxDNILength {
			return &entity.Reply{Text: msgInvalidDNI, Action: ActionWizardInvalid}, false, nil
		}
		session.ClientData.DNI = text
		return w.advance(ctx, session, entity.StepWaitingAddress, msgAskAddress, ActionWizardDNI)

	case entity.StepWaitingAddress:
		if utf8.RuneCountInString(text) < minAddressLen {
			return &entity.Reply{Text: msgShortAddress, Action: ActionWizardInvalid}, false, nil
		}
		session.ClientData.Address = text
		summary := confirmDataText(session.ClientData, entity.CartTotal(session.Items).StringFixed(2))
		return w.advance(ctx, session, entity.StepWaitingFinalConfirmation, summary, ActionWizardAddress)

	case entity.StepWaitingFinalConfirmation:
		// Corrections are checked first so "no es correcto" is not a yes.
		if hasAnyPhrase(norm, w.kw.Edit) {
			return w.advance(ctx, session, entity.StepWaitingName, msgRestartWizard, ActionWizardRestart)
		}
		if hasAnyPhrase(norm, w.kw.Confirm) {
			return nil, true, nil
		}
		return &entity.Reply{Text: msgAmbiguousFinal, Action: ActionWizardInvalid}, false, nil

	case entity.StepWaitingExistingData:
		if hasAnyPhrase(norm, w.kw.UpdateExisting) {
			session.ClientData = entity.ClientData{}
			return w.advance(ctx, session, entity.StepWaitingName, msgUpdateData, ActionWizardRestart)
		}
		if hasAnyPhrase(norm, w.kw.UseExisting) {
			return nil, true, nil
		}
		return &entity.Reply{Text: msgAmbiguousExisting, Action: ActionWizardInvalid}, false, nil

	case entity.StepProcessingCheckout:
		// A previous checkout did not finish; try again.
		return nil, true, nil
	}
	return nil, false, fmt.Errorf("wizard: %w: %s", entity.ErrInvalidTransition, session.Step)
}

func (w *Wizard) advance(ctx context.Context, session *entity.Session, to entity.Step, text, action string) (*entity.Reply, bool, error) {
	if err := session.Advance(to); err != nil {
		return nil, false, err
	}
	if _, err := w.cart.Save(ctx, session); err != nil {
		return nil, false, err
	}
	return &entity.Reply{Text: text, Action: action}, false, nil
}
