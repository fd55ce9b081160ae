package check

import (
	"fmt"
	"time"
)

// AppearanceTimeout bounds how long the verifier polls for a locator
// before failing.
const AppearanceTimeout = 15 * time.Second

// Locators the element verifier asserts on.
const (
	usernameLocator   = "#username"
	passwordLocator   = "#password"
	logInLocator      = "#log-in"
	countdownLocator  = "#closing-banner"
	menuItemLocator   = ".sidebar .menu-item"
	statusPillLocator = ".transactions .status-pill"
)

// Reader is the subset of a browser session the verifier reads from.
// browser.Session satisfies it.
type Reader interface {
	WaitAppearance(selector string, timeout time.Duration) error
	Text(selector string) (string, error)
	Texts(selector string) ([]string, error)
}

// ElementVerifier verifies pages by element presence and text content.
// It satisfies flow.Verifier.
type ElementVerifier struct {
	session Reader
}

func NewElementVerifier(session Reader) *ElementVerifier {
	return &ElementVerifier{session: session}
}

// VerifyLoginPage waits for the three login controls to appear.
func (v *ElementVerifier) VerifyLoginPage() error {
	for _, locator := range []string{usernameLocator, passwordLocator, logInLocator} {
		if err := v.session.WaitAppearance(locator, AppearanceTimeout); err != nil {
			return fmt.Errorf("login page verification: %w", err)
		}
	}
	return nil
}

// VerifyMainPage checks the countdown banner format, the ordered account
// menu, and the transaction status badges.
func (v *ElementVerifier) VerifyMainPage() error {
	if err := v.session.WaitAppearance(countdownLocator, AppearanceTimeout); err != nil {
		return fmt.Errorf("main page verification: %w", err)
	}

	banner, err := v.session.Text(countdownLocator)
	if err != nil {
		return fmt.Errorf("main page verification: %w", err)
	}
	if err := MatchCountdown(banner); err != nil {
		return fmt.Errorf("closing banner: %w", err)
	}

	menu, err := v.session.Texts(menuItemLocator)
	if err != nil {
		return fmt.Errorf("main page verification: %w", err)
	}
	if err := MatchOrdered(menu, ExpectedMenuItems); err != nil {
		return fmt.Errorf("account menu: %w", err)
	}

	badges, err := v.session.Texts(statusPillLocator)
	if err != nil {
		return fmt.Errorf("main page verification: %w", err)
	}
	if err := MatchMembership(badges, AllowedStatuses); err != nil {
		return fmt.Errorf("status badges: %w", err)
	}

	return nil
}
