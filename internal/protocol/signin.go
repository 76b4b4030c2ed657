package protocol

import (
	"context"

	"github.com/stylepost/stylepost/internal/model"
)

// SignIn signs in to the portal. Every failure is fatal: without a session
// no item can be attempted.
func (p *SalonBoard) SignIn(ctx context.Context, creds model.Credentials) model.StepOutcome {
	login := p.sels.Login
	p.logger.Infof("Signing in")

	if err := p.driver.Navigate(ctx, login.URL); err != nil {
		return model.StepFatal("sign-in page unreachable", err)
	}

	if err := p.driver.Fill(ctx, login.UserIDInput, creds.UserID); err != nil {
		return model.StepFatal("sign-in form not available", err)
	}
	if err := p.driver.Fill(ctx, login.PasswordInput, creds.Password); err != nil {
		return model.StepFatal("sign-in form not available", err)
	}

	if err := p.driver.ClickAndSettle(ctx, login.SignInButton); err != nil {
		return model.StepFatal("sign-in submit failed", err)
	}

	if out := p.selectSalon(ctx, creds); !out.Success() {
		return out
	}

	if err := p.driver.WaitForVisible(ctx, login.DashboardNav, p.waitTimeout); err != nil {
		return model.StepFatal("login failed", err)
	}

	p.logger.Infof("Signed in")
	return model.StepSuccess()
}

// selectSalon handles the multi-salon account branch: when the salon list
// table is present, scan its rows for one whose id or name matches the
// selector and enter it.
func (p *SalonBoard) selectSalon(ctx context.Context, creds model.Credentials) model.StepOutcome {
	sel := p.sels.SalonSelection

	present, err := p.driver.Count(ctx, sel.ListTable)
	if err != nil {
		return model.StepFatal("could not inspect salon selection", err)
	}
	if present == 0 {
		// Single-salon account, nothing to select.
		return model.StepSuccess()
	}

	p.logger.Infof("Multi-salon account detected")
	if !creds.HasSalonSelector() {
		return model.StepFatal("salon selection required but no salon selector provided", nil)
	}

	rows, err := p.driver.Count(ctx, sel.Row)
	if err != nil {
		return model.StepFatal("could not inspect salon rows", err)
	}

	matched := -1
	for i := 0; i < rows; i++ {
		id, err := p.driver.NthCellText(ctx, sel.Row, i, sel.IDCell)
		if err != nil {
			return model.StepFatal("could not read salon row", err)
		}
		name, err := p.driver.NthCellText(ctx, sel.Row, i, sel.NameCell)
		if err != nil {
			return model.StepFatal("could not read salon row", err)
		}

		if creds.MatchesSalon(id, name) {
			p.logger.Infof("Selected salon: %s", name)
			matched = i
			break
		}
	}
	if matched < 0 {
		return model.StepFatal("salon not found", nil)
	}

	if err := p.driver.ClickInNthAndSettle(ctx, sel.Row, matched, sel.RowLink); err != nil {
		return model.StepFatal("could not enter salon", err)
	}

	return model.StepSuccess()
}

// NavigateToForm clicks through the two fixed menu links to the style
// management page. The batch cannot proceed without this page, so every
// failure is fatal.
func (p *SalonBoard) NavigateToForm(ctx context.Context) model.StepOutcome {
	nav := p.sels.Navigation

	if err := p.driver.ClickAndSettle(ctx, nav.ListingMenu); err != nil {
		return model.StepFatal("listing management menu unreachable", err)
	}
	if err := p.driver.ClickAndSettle(ctx, nav.StyleMenu); err != nil {
		return model.StepFatal("style management page unreachable", err)
	}

	p.logger.Infof("On style management page")
	return model.StepSuccess()
}
