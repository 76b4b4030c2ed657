package selectors_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/selectors"
)

const validTableYAML = `
version: "2026-08-01"
login:
  url: "https://portal.example.com/login/"
  user_id_input: "#loginId"
  password_input: "#password"
  sign_in_button: "a.loginBtn"
  dashboard_nav: "#globalNavi"
salon_selection:
  list_table: "table.salons"
  row: "tbody tr"
  id_cell: "td:nth-child(1)"
  name_cell: "td:nth-child(2)"
  row_link: "a"
navigation:
  listing_menu: "a#menuListing"
  style_menu: "a#menuStyle"
style_form:
  new_style_button: "a.newStyle"
  image:
    upload_area: "#dropArea"
    container: "#imageModal"
    file_input: "#imageModal input[type='file']"
    submit_button: "#imageModal .isActive"
  stylist_select: "select#stylistId"
  comment_area: "textarea#comment"
  style_name_input: "input#styleName"
  category_ladies_radio: "input#categoryLadies"
  category_mens_radio: "input#categoryMens"
  length_select_ladies: "select#lengthLadies"
  length_select_mens: "select#lengthMens"
  menu_detail_area: "textarea#menuContent"
  coupon:
    open_button: "a#couponBtn"
    container: "#couponModal"
    label_template: "#couponModal label:has-text('%s')"
    apply_button: "#couponModal .setting"
  hashtag:
    input: "input#hashTag"
    add_button: "a#hashTagAdd"
  register_button: "a#regist"
  complete_text: "登録が完了しました"
  back_to_list_button: "a.backToList"
robot_detection:
  texts:
    - "ロボットではないことを確認"
  selectors:
    - "#px-captcha"
widget:
  selectors:
    - "#karte-c"
`

func TestYAMLRepositoryGetTable(t *testing.T) {
	tests := map[string]struct {
		files    fstest.MapFS
		path     string
		expErr   bool
		validate func(t *testing.T, table selectors.Table)
	}{
		"Valid table loads every section": {
			files: fstest.MapFS{
				"selectors.yaml": {Data: []byte(validTableYAML)},
			},
			path: "selectors.yaml",
			validate: func(t *testing.T, table selectors.Table) {
				assert.Equal(t, "2026-08-01", table.Version)
				assert.Equal(t, "https://portal.example.com/login/", table.Login.URL)
				assert.Equal(t, model.Locator("#loginId"), table.Login.UserIDInput)
				assert.Equal(t, model.Locator("table.salons"), table.SalonSelection.ListTable)
				assert.Equal(t, model.Locator("a#menuListing"), table.Navigation.ListingMenu)
				assert.Equal(t, "登録が完了しました", table.StyleForm.CompleteText)
				assert.Equal(t, []string{"ロボットではないことを確認"}, table.Detection.Texts)
				assert.Equal(t, []model.Locator{"#px-captcha"}, table.Detection.Locators)
				assert.Equal(t, []model.Locator{"#karte-c"}, table.Widgets)
			},
		},
		"Coupon label resolves the template": {
			files: fstest.MapFS{
				"selectors.yaml": {Data: []byte(validTableYAML)},
			},
			path: "selectors.yaml",
			validate: func(t *testing.T, table selectors.Table) {
				got := table.StyleForm.Coupon.Label("10% off")
				assert.Equal(t, model.Locator("#couponModal label:has-text('10% off')"), got)
			},
		},
		"Missing file returns error": {
			files:  fstest.MapFS{},
			path:   "selectors.yaml",
			expErr: true,
		},
		"Invalid YAML returns error": {
			files: fstest.MapFS{
				"selectors.yaml": {Data: []byte("login: [")},
			},
			path:   "selectors.yaml",
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo := selectors.NewYAMLRepository(tt.files)
			table, err := repo.GetTable(context.TODO(), tt.path)

			if tt.expErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.validate(t, table)
		})
	}
}

func TestYAMLRepositoryGetTableValidation(t *testing.T) {
	t.Run("Missing required selector returns not valid", func(t *testing.T) {
		// Drop the register button line.
		broken := fstest.MapFS{
			"selectors.yaml": {Data: []byte(`
version: "1"
login:
  url: "https://portal.example.com/login/"
`)},
		}

		repo := selectors.NewYAMLRepository(broken)
		_, err := repo.GetTable(context.TODO(), "selectors.yaml")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotValid)
	})

	t.Run("Coupon template without placeholder returns not valid", func(t *testing.T) {
		content := strings.Replace(validTableYAML, "label_template: \"#couponModal label:has-text('%s')\"", "label_template: \"#couponModal label\"", 1)

		repo := selectors.NewYAMLRepository(fstest.MapFS{
			"selectors.yaml": {Data: []byte(content)},
		})
		_, err := repo.GetTable(context.TODO(), "selectors.yaml")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotValid)
	})
}
