package selectors

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/stylepost/stylepost/internal/model"
)

// YAMLRepository loads locator tables from YAML files.
type YAMLRepository struct {
	fs fs.FS
}

// NewYAMLRepository creates a new YAML locator table repository.
func NewYAMLRepository(filesystem fs.FS) *YAMLRepository {
	return &YAMLRepository{fs: filesystem}
}

// GetTable loads a locator table from a YAML file and returns a validated
// immutable table.
func (r *YAMLRepository) GetTable(ctx context.Context, path string) (Table, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return Table{}, fmt.Errorf("reading selectors file: %w", err)
	}

	if ctx.Err() != nil {
		return Table{}, ctx.Err()
	}

	var raw tableYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Table{}, fmt.Errorf("parsing YAML: %w", err)
	}

	table := raw.toModel()
	if err := table.Validate(); err != nil {
		return Table{}, fmt.Errorf("invalid locator table: %w", err)
	}

	return table, nil
}

type tableYAML struct {
	Version string `yaml:"version"`
	Login   struct {
		URL           string `yaml:"url"`
		UserIDInput   string `yaml:"user_id_input"`
		PasswordInput string `yaml:"password_input"`
		SignInButton  string `yaml:"sign_in_button"`
		DashboardNav  string `yaml:"dashboard_nav"`
	} `yaml:"login"`
	SalonSelection struct {
		ListTable string `yaml:"list_table"`
		Row       string `yaml:"row"`
		IDCell    string `yaml:"id_cell"`
		NameCell  string `yaml:"name_cell"`
		RowLink   string `yaml:"row_link"`
	} `yaml:"salon_selection"`
	Navigation struct {
		ListingMenu string `yaml:"listing_menu"`
		StyleMenu   string `yaml:"style_menu"`
	} `yaml:"navigation"`
	StyleForm struct {
		NewStyleButton string `yaml:"new_style_button"`
		Image          struct {
			UploadArea   string `yaml:"upload_area"`
			Container    string `yaml:"container"`
			FileInput    string `yaml:"file_input"`
			SubmitButton string `yaml:"submit_button"`
		} `yaml:"image"`
		StylistSelect       string `yaml:"stylist_select"`
		CommentArea         string `yaml:"comment_area"`
		StyleNameInput      string `yaml:"style_name_input"`
		CategoryLadiesRadio string `yaml:"category_ladies_radio"`
		CategoryMensRadio   string `yaml:"category_mens_radio"`
		LengthSelectLadies  string `yaml:"length_select_ladies"`
		LengthSelectMens    string `yaml:"length_select_mens"`
		MenuDetailArea      string `yaml:"menu_detail_area"`
		Coupon              struct {
			OpenButton    string `yaml:"open_button"`
			Container     string `yaml:"container"`
			LabelTemplate string `yaml:"label_template"`
			ApplyButton   string `yaml:"apply_button"`
		} `yaml:"coupon"`
		Hashtag struct {
			Input     string `yaml:"input"`
			AddButton string `yaml:"add_button"`
		} `yaml:"hashtag"`
		RegisterButton   string `yaml:"register_button"`
		CompleteText     string `yaml:"complete_text"`
		BackToListButton string `yaml:"back_to_list_button"`
	} `yaml:"style_form"`
	RobotDetection struct {
		Texts     []string `yaml:"texts"`
		Selectors []string `yaml:"selectors"`
	} `yaml:"robot_detection"`
	Widget struct {
		Selectors []string `yaml:"selectors"`
	} `yaml:"widget"`
}

func (t tableYAML) toModel() Table {
	return Table{
		Version: t.Version,
		Login: Login{
			URL:           t.Login.URL,
			UserIDInput:   model.Locator(t.Login.UserIDInput),
			PasswordInput: model.Locator(t.Login.PasswordInput),
			SignInButton:  model.Locator(t.Login.SignInButton),
			DashboardNav:  model.Locator(t.Login.DashboardNav),
		},
		SalonSelection: SalonSelection{
			ListTable: model.Locator(t.SalonSelection.ListTable),
			Row:       model.Locator(t.SalonSelection.Row),
			IDCell:    model.Locator(t.SalonSelection.IDCell),
			NameCell:  model.Locator(t.SalonSelection.NameCell),
			RowLink:   model.Locator(t.SalonSelection.RowLink),
		},
		Navigation: Navigation{
			ListingMenu: model.Locator(t.Navigation.ListingMenu),
			StyleMenu:   model.Locator(t.Navigation.StyleMenu),
		},
		StyleForm: StyleForm{
			NewStyleButton: model.Locator(t.StyleForm.NewStyleButton),
			Image: ImageModal{
				UploadArea:   model.Locator(t.StyleForm.Image.UploadArea),
				Container:    model.Locator(t.StyleForm.Image.Container),
				FileInput:    model.Locator(t.StyleForm.Image.FileInput),
				SubmitButton: model.Locator(t.StyleForm.Image.SubmitButton),
			},
			StylistSelect:       model.Locator(t.StyleForm.StylistSelect),
			CommentArea:         model.Locator(t.StyleForm.CommentArea),
			StyleNameInput:      model.Locator(t.StyleForm.StyleNameInput),
			CategoryLadiesRadio: model.Locator(t.StyleForm.CategoryLadiesRadio),
			CategoryMensRadio:   model.Locator(t.StyleForm.CategoryMensRadio),
			LengthSelectLadies:  model.Locator(t.StyleForm.LengthSelectLadies),
			LengthSelectMens:    model.Locator(t.StyleForm.LengthSelectMens),
			MenuDetailArea:      model.Locator(t.StyleForm.MenuDetailArea),
			Coupon: CouponModal{
				OpenButton:    model.Locator(t.StyleForm.Coupon.OpenButton),
				Container:     model.Locator(t.StyleForm.Coupon.Container),
				LabelTemplate: t.StyleForm.Coupon.LabelTemplate,
				ApplyButton:   model.Locator(t.StyleForm.Coupon.ApplyButton),
			},
			Hashtag: HashtagBox{
				Input:     model.Locator(t.StyleForm.Hashtag.Input),
				AddButton: model.Locator(t.StyleForm.Hashtag.AddButton),
			},
			RegisterButton:   model.Locator(t.StyleForm.RegisterButton),
			CompleteText:     t.StyleForm.CompleteText,
			BackToListButton: model.Locator(t.StyleForm.BackToListButton),
		},
		Detection: Detection{
			Texts:    t.RobotDetection.Texts,
			Locators: toLocators(t.RobotDetection.Selectors),
		},
		Widgets: toLocators(t.Widget.Selectors),
	}
}

func toLocators(ss []string) []model.Locator {
	if len(ss) == 0 {
		return nil
	}
	ls := make([]model.Locator, 0, len(ss))
	for _, s := range ss {
		ls = append(ls, model.Locator(s))
	}
	return ls
}
