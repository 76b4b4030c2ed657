package protocol

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stylepost/stylepost/internal/model"
)

// SubmitRecord posts a single record. Failures default to recoverable so one
// bad record can't sink the batch; only losing the post-submit navigation
// (or a bot challenge) is fatal, because subsequent records can't be
// attempted from an unknown page.
func (p *SalonBoard) SubmitRecord(ctx context.Context, rec model.Record, imageDir string) model.StepOutcome {
	form := p.sels.StyleForm
	p.logger.Infof("Submitting record: %s", rec.Label())

	if err := p.driver.ClickAndSettle(ctx, form.NewStyleButton); err != nil {
		return p.recoverable("could not open new style form", err)
	}

	if out := p.uploadImage(ctx, rec, imageDir); !out.Success() {
		return out
	}

	if out := p.fillFields(ctx, rec); !out.Success() {
		return out
	}

	if rec.Coupon != "" {
		if out := p.selectCoupon(ctx, rec.Coupon); !out.Success() {
			return out
		}
	}

	if out := p.addHashtags(ctx, rec); !out.Success() {
		return out
	}

	if err := p.driver.ClickAndSettle(ctx, form.RegisterButton); err != nil {
		return p.recoverable("could not register style", err)
	}
	if err := p.driver.WaitForText(ctx, form.CompleteText, p.waitTimeout); err != nil {
		return p.recoverable("registration not confirmed", err)
	}

	if err := p.driver.ClickAndSettle(ctx, form.BackToListButton); err != nil {
		return model.StepFatal("post-submit navigation lost", err)
	}

	p.logger.Infof("Record submitted: %s", rec.Label())
	return model.StepSuccess()
}

// uploadImage opens the image modal and attaches the record's image file.
func (p *SalonBoard) uploadImage(ctx context.Context, rec model.Record, imageDir string) model.StepOutcome {
	img := p.sels.StyleForm.Image

	imagePath := filepath.Join(imageDir, rec.ImageFile)
	if _, err := os.Stat(imagePath); err != nil {
		return model.StepRecoverable(fmt.Sprintf("image %q missing", rec.ImageFile), err)
	}

	if err := p.driver.Click(ctx, img.UploadArea); err != nil {
		return p.recoverable("could not open image modal", err)
	}
	if err := p.driver.WaitForVisible(ctx, img.Container, p.waitTimeout); err != nil {
		return p.recoverable("image modal did not appear", err)
	}
	if err := p.driver.UploadFile(ctx, img.FileInput, imagePath); err != nil {
		return p.recoverable("could not attach image", err)
	}
	if err := p.driver.WaitForVisible(ctx, img.SubmitButton, p.waitTimeout); err != nil {
		return p.recoverable("image submit did not activate", err)
	}
	if err := p.driver.Click(ctx, img.SubmitButton); err != nil {
		return p.recoverable("could not submit image", err)
	}
	if err := p.driver.WaitForHidden(ctx, img.Container, p.waitTimeout); err != nil {
		return p.recoverable("image modal did not close", err)
	}

	return model.StepSuccess()
}

// fillFields fills the text fields and category/length selection from the
// record. Optional fields are only touched when non-empty.
func (p *SalonBoard) fillFields(ctx context.Context, rec model.Record) model.StepOutcome {
	form := p.sels.StyleForm

	if rec.Stylist != "" {
		if err := p.driver.SelectOption(ctx, form.StylistSelect, rec.Stylist); err != nil {
			return p.recoverable("could not select stylist", err)
		}
	}
	if rec.Comment != "" {
		if err := p.driver.Fill(ctx, form.CommentArea, rec.Comment); err != nil {
			return p.recoverable("could not fill comment", err)
		}
	}
	if rec.StyleName != "" {
		if err := p.driver.Fill(ctx, form.StyleNameInput, rec.StyleName); err != nil {
			return p.recoverable("could not fill style name", err)
		}
	}

	radio, lengthSelect := form.CategoryLadiesRadio, form.LengthSelectLadies
	if rec.Category == model.CategoryMens {
		radio, lengthSelect = form.CategoryMensRadio, form.LengthSelectMens
	}
	if err := p.driver.Click(ctx, radio); err != nil {
		return p.recoverable("could not select category", err)
	}
	if rec.Length != "" {
		if err := p.driver.SelectOption(ctx, lengthSelect, rec.Length); err != nil {
			return p.recoverable("could not select length", err)
		}
	}

	if rec.MenuDetail != "" {
		if err := p.driver.Fill(ctx, form.MenuDetailArea, rec.MenuDetail); err != nil {
			return p.recoverable("could not fill menu detail", err)
		}
	}

	return model.StepSuccess()
}

// selectCoupon opens the coupon modal and applies the option whose label
// matches the coupon name. A missing option follows the configured policy:
// strict fails the record, lax submits it with the coupon left unset.
func (p *SalonBoard) selectCoupon(ctx context.Context, coupon string) model.StepOutcome {
	modal := p.sels.StyleForm.Coupon

	if err := p.driver.Click(ctx, modal.OpenButton); err != nil {
		return p.recoverable("could not open coupon modal", err)
	}
	if err := p.driver.WaitForVisible(ctx, modal.Container, p.waitTimeout); err != nil {
		return p.recoverable("coupon modal did not appear", err)
	}

	label := modal.Label(coupon)
	matches, err := p.driver.Count(ctx, label)
	if err != nil {
		return p.recoverable("could not look up coupon", err)
	}

	if matches == 0 {
		if p.couponStrict {
			return model.StepRecoverable(fmt.Sprintf("coupon %q not found", coupon), nil)
		}
		p.logger.Warningf("Coupon %q not found, submitting without coupon", coupon)
	} else {
		if err := p.driver.Click(ctx, label); err != nil {
			return p.recoverable("could not select coupon", err)
		}
	}

	// Apply closes the modal in both branches, leaving the form in a known
	// state for the remaining sub-steps.
	if err := p.driver.Click(ctx, modal.ApplyButton); err != nil {
		return p.recoverable("could not apply coupon selection", err)
	}
	if err := p.driver.WaitForHidden(ctx, modal.Container, p.waitTimeout); err != nil {
		return p.recoverable("coupon modal did not close", err)
	}

	return model.StepSuccess()
}

// addHashtags fills and adds each hashtag with a fixed client-side settle
// between tags, long enough for the tag chip to register.
func (p *SalonBoard) addHashtags(ctx context.Context, rec model.Record) model.StepOutcome {
	box := p.sels.StyleForm.Hashtag

	for _, tag := range rec.HashtagList() {
		if err := p.driver.Fill(ctx, box.Input, tag); err != nil {
			return p.recoverable("could not fill hashtag", err)
		}
		if err := p.driver.Click(ctx, box.AddButton); err != nil {
			return p.recoverable("could not add hashtag", err)
		}

		// A plain sleep, not a ctx-aware wait: interruption is honored
		// between records, an in-flight record always runs to completion.
		time.Sleep(p.hashtagSettle)
	}

	return model.StepSuccess()
}

// recoverable classifies a sub-step error. Bot challenges escalate to fatal
// regardless of the sub-step: once a challenge is on screen no further
// submission can be trusted.
func (p *SalonBoard) recoverable(reason string, err error) model.StepOutcome {
	if errors.Is(err, model.ErrBotDetected) {
		return model.StepFatal("robot detection triggered", err)
	}
	return model.StepRecoverable(reason, err)
}
