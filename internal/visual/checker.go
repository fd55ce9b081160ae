package visual

// Checkpoint names shared by every test in a suite; baselines are keyed
// by these names on the grid.
const (
	LoginCheckpoint = "Login page"
	MainCheckpoint  = "Main page"
)

// Verifier adapts an opened Eyes client to the login flow's verification
// interface. The login checkpoint uses the strict policy; the main page
// uses layout to tolerate the branch-closing countdown.
type Verifier struct {
	eyes *Eyes
}

func NewVerifier(eyes *Eyes) *Verifier {
	return &Verifier{eyes: eyes}
}

func (v *Verifier) VerifyLoginPage() error {
	return v.eyes.Check(LoginCheckpoint, MatchStrict)
}

func (v *Verifier) VerifyMainPage() error {
	return v.eyes.Check(MainCheckpoint, MatchLayout)
}
