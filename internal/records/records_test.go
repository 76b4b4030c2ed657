package records_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylepost/stylepost/internal/model"
	"github.com/stylepost/stylepost/internal/records"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	tests := map[string]struct {
		content  string
		expErr   bool
		validate func(t *testing.T, recs []model.Record)
	}{
		"Valid file with every column": {
			content: "image,stylist,style_name,category,length,comment,menu_detail,coupon,hashtags\n" +
				"style1.jpg,Tanaka,Short bob,ladies,ショート,Nice cut,Cut + color,Summer 10% off,\"bob, short\"\n" +
				"style2.jpg,Sato,Business cut,mens,ベリーショート,,,,\n",
			validate: func(t *testing.T, recs []model.Record) {
				require.Len(t, recs, 2)

				assert.Equal(t, "style1.jpg", recs[0].ImageFile)
				assert.Equal(t, "Tanaka", recs[0].Stylist)
				assert.Equal(t, model.CategoryLadies, recs[0].Category)
				assert.Equal(t, "Summer 10% off", recs[0].Coupon)
				assert.Equal(t, []string{"bob", "short"}, recs[0].HashtagList())

				assert.Equal(t, model.CategoryMens, recs[1].Category)
				assert.Empty(t, recs[1].Coupon)
			},
		},
		"Header casing and cell whitespace are normalized": {
			content: "Image,STYLIST,Style_Name,Category,Length\n" +
				" style1.jpg , Tanaka ,Short bob,ladies,ショート\n",
			validate: func(t *testing.T, recs []model.Record) {
				require.Len(t, recs, 1)
				assert.Equal(t, "style1.jpg", recs[0].ImageFile)
				assert.Equal(t, "Tanaka", recs[0].Stylist)
			},
		},
		"Missing required column returns error": {
			content: "image,stylist,category,length\nstyle1.jpg,Tanaka,ladies,ショート\n",
			expErr:  true,
		},
		"Row missing a required cell returns error": {
			content: "image,stylist,style_name,category,length\nstyle1.jpg,,Short bob,ladies,ショート\n",
			expErr:  true,
		},
		"Header only returns error": {
			content: "image,stylist,style_name,category,length\n",
			expErr:  true,
		},
		"Empty file returns error": {
			content: "",
			expErr:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "records.csv", tt.content)

			recs, err := records.Load(path)

			if tt.expErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.validate(t, recs)
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "records.txt", "whatever")

	_, err := records.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotValid)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := records.Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestValidateImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "style1.jpg", "fake image data")

	tests := map[string]struct {
		records []model.Record
		expErr  bool
	}{
		"All images present": {
			records: []model.Record{{ImageFile: "style1.jpg"}},
			expErr:  false,
		},
		"Missing image returns error": {
			records: []model.Record{
				{ImageFile: "style1.jpg"},
				{ImageFile: "missing.jpg"},
			},
			expErr: true,
		},
		"No records is valid": {
			records: nil,
			expErr:  false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := records.ValidateImages(tt.records, dir)

			if tt.expErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
