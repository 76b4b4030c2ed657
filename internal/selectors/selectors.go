// Package selectors holds the externally maintained locator table: the
// versioned mapping from symbolic step names to the portal's UI element
// locators. It is pure data, loaded once and injected into the protocol.
package selectors

import (
	"fmt"
	"strings"

	"github.com/stylepost/stylepost/internal/model"
)

// Table is the immutable locator table driving the posting protocol.
type Table struct {
	Version        string
	Login          Login
	SalonSelection SalonSelection
	Navigation     Navigation
	StyleForm      StyleForm
	Detection      Detection
	Widgets        []model.Locator
}

// Login are the locators for the sign-in step.
type Login struct {
	URL           string
	UserIDInput   model.Locator
	PasswordInput model.Locator
	SignInButton  model.Locator
	// DashboardNav is the post-login navigation landmark that confirms a
	// successful sign-in.
	DashboardNav model.Locator
}

// SalonSelection are the locators for the multi-salon account branch.
type SalonSelection struct {
	ListTable model.Locator
	Row       model.Locator
	IDCell    model.Locator
	NameCell  model.Locator
	RowLink   model.Locator
}

// Navigation are the fixed menu locators leading to the style form.
type Navigation struct {
	ListingMenu model.Locator
	StyleMenu   model.Locator
}

// StyleForm are the locators for submitting one record.
type StyleForm struct {
	NewStyleButton model.Locator

	Image ImageModal

	StylistSelect       model.Locator
	CommentArea         model.Locator
	StyleNameInput      model.Locator
	CategoryLadiesRadio model.Locator
	CategoryMensRadio   model.Locator
	LengthSelectLadies  model.Locator
	LengthSelectMens    model.Locator
	MenuDetailArea      model.Locator

	Coupon  CouponModal
	Hashtag HashtagBox

	RegisterButton   model.Locator
	CompleteText     string
	BackToListButton model.Locator
}

// ImageModal are the locators of the image upload modal.
type ImageModal struct {
	UploadArea   model.Locator
	Container    model.Locator
	FileInput    model.Locator
	SubmitButton model.Locator
}

// CouponModal are the locators of the coupon selection modal.
// LabelTemplate contains a single %s expanded with the coupon name.
type CouponModal struct {
	OpenButton    model.Locator
	Container     model.Locator
	LabelTemplate string
	ApplyButton   model.Locator
}

// Label resolves the locator of the coupon option with the given name.
func (c CouponModal) Label(name string) model.Locator {
	return model.Locator(fmt.Sprintf(c.LabelTemplate, name))
}

// HashtagBox are the locators of the hashtag input group.
type HashtagBox struct {
	Input     model.Locator
	AddButton model.Locator
}

// Detection are the anti-bot challenge indicators the guard probes for.
type Detection struct {
	Texts    []string
	Locators []model.Locator
}

// Validate validates that every locator the protocol depends on is present.
func (t *Table) Validate() error {
	required := map[string]string{
		"login.url":                     t.Login.URL,
		"login.user_id_input":           t.Login.UserIDInput.String(),
		"login.password_input":          t.Login.PasswordInput.String(),
		"login.sign_in_button":          t.Login.SignInButton.String(),
		"login.dashboard_nav":           t.Login.DashboardNav.String(),
		"navigation.listing_menu":       t.Navigation.ListingMenu.String(),
		"navigation.style_menu":         t.Navigation.StyleMenu.String(),
		"style_form.new_style_button":   t.StyleForm.NewStyleButton.String(),
		"style_form.image.upload_area":  t.StyleForm.Image.UploadArea.String(),
		"style_form.image.container":    t.StyleForm.Image.Container.String(),
		"style_form.image.file_input":   t.StyleForm.Image.FileInput.String(),
		"style_form.image.submit":       t.StyleForm.Image.SubmitButton.String(),
		"style_form.register_button":    t.StyleForm.RegisterButton.String(),
		"style_form.complete_text":      t.StyleForm.CompleteText,
		"style_form.back_to_list":       t.StyleForm.BackToListButton.String(),
		"style_form.stylist_select":     t.StyleForm.StylistSelect.String(),
		"style_form.category_ladies":    t.StyleForm.CategoryLadiesRadio.String(),
		"style_form.category_mens":      t.StyleForm.CategoryMensRadio.String(),
		"style_form.length_sel_ladies":  t.StyleForm.LengthSelectLadies.String(),
		"style_form.length_select_mens": t.StyleForm.LengthSelectMens.String(),
	}

	var missing []string
	for name, v := range required {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing selectors %s: %w", strings.Join(missing, ", "), model.ErrNotValid)
	}

	if t.StyleForm.Coupon.LabelTemplate != "" && !strings.Contains(t.StyleForm.Coupon.LabelTemplate, "%s") {
		return fmt.Errorf("coupon label template must contain %%s: %w", model.ErrNotValid)
	}

	return nil
}
