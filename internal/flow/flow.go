// Package flow drives the shared login scenario both workshop suites run:
// load the login page, verify it, log in, verify the main page. The two
// verification strategies plug in through the Verifier interface, chosen
// at composition time.
package flow

import (
	"fmt"
)

// Demo credentials accepted by the demo site.
const (
	Username = "andy"
	Password = "i<3pandas"
)

// Paths of the two login page variants.
const (
	originalPath = "/"
	changedPath  = "/index_v2.html"
)

// Driver is the subset of a browser session the flow needs.
// browser.Session satisfies it.
type Driver interface {
	Navigate(url string) error
	Fill(selector, value string) error
	Click(selector string) error
}

// Verifier checks page state after each navigation step. Implemented by
// check.ElementVerifier and visual.Verifier.
type Verifier interface {
	VerifyLoginPage() error
	VerifyMainPage() error
}

// LoginFlow runs the four interaction steps in fixed order; each step
// depends on the navigation state left by the previous one.
type LoginFlow struct {
	driver      Driver
	verifier    Verifier
	baseURL     string
	useOriginal bool
}

func NewLoginFlow(driver Driver, verifier Verifier, baseURL string, useOriginal bool) *LoginFlow {
	return &LoginFlow{
		driver:      driver,
		verifier:    verifier,
		baseURL:     baseURL,
		useOriginal: useOriginal,
	}
}

// LoadLoginPage navigates to the selected site variant.
func (f *LoginFlow) LoadLoginPage() error {
	path := originalPath
	if !f.useOriginal {
		path = changedPath
	}
	if err := f.driver.Navigate(f.baseURL + path); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}
	return nil
}

// VerifyLoginPage delegates to the verification strategy.
func (f *LoginFlow) VerifyLoginPage() error {
	return f.verifier.VerifyLoginPage()
}

// PerformLogin fills the credentials and submits the form.
func (f *LoginFlow) PerformLogin() error {
	if err := f.driver.Fill("#username", Username); err != nil {
		return fmt.Errorf("perform login: %w", err)
	}
	if err := f.driver.Fill("#password", Password); err != nil {
		return fmt.Errorf("perform login: %w", err)
	}
	if err := f.driver.Click("#log-in"); err != nil {
		return fmt.Errorf("perform login: %w", err)
	}
	return nil
}

// VerifyMainPage delegates to the verification strategy.
func (f *LoginFlow) VerifyMainPage() error {
	return f.verifier.VerifyMainPage()
}

// Run executes all four steps in order, stopping at the first failure.
func (f *LoginFlow) Run() error {
	steps := []func() error{
		f.LoadLoginPage,
		f.VerifyLoginPage,
		f.PerformLogin,
		f.VerifyMainPage,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
