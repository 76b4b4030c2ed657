package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylepost/stylepost/internal/model"
)

func TestParseCategory(t *testing.T) {
	tests := map[string]struct {
		raw string
		exp model.Category
	}{
		"Mens":                          {raw: "mens", exp: model.CategoryMens},
		"Mens with casing and spaces":   {raw: "  MENS ", exp: model.CategoryMens},
		"Ladies":                        {raw: "ladies", exp: model.CategoryLadies},
		"Unknown value defaults ladies": {raw: "other", exp: model.CategoryLadies},
		"Empty value defaults ladies":   {raw: "", exp: model.CategoryLadies},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.exp, model.ParseCategory(tt.raw))
		})
	}
}

func TestRecordValidate(t *testing.T) {
	validRecord := func() model.Record {
		return model.Record{
			ImageFile: "style1.jpg",
			Stylist:   "Tanaka",
			StyleName: "Short bob",
			Category:  model.CategoryLadies,
			Length:    "ショート",
		}
	}

	tests := map[string]struct {
		record func() model.Record
		expErr bool
	}{
		"Valid record": {
			record: validRecord,
			expErr: false,
		},
		"Missing image returns error": {
			record: func() model.Record {
				r := validRecord()
				r.ImageFile = ""
				return r
			},
			expErr: true,
		},
		"Missing stylist returns error": {
			record: func() model.Record {
				r := validRecord()
				r.Stylist = ""
				return r
			},
			expErr: true,
		},
		"Missing style name returns error": {
			record: func() model.Record {
				r := validRecord()
				r.StyleName = ""
				return r
			},
			expErr: true,
		},
		"Missing length returns error": {
			record: func() model.Record {
				r := validRecord()
				r.Length = ""
				return r
			},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			record := tt.record()
			err := record.Validate()

			if tt.expErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRecordHashtagList(t *testing.T) {
	tests := map[string]struct {
		hashtags string
		exp      []string
	}{
		"Empty": {
			hashtags: "",
			exp:      nil,
		},
		"Single tag": {
			hashtags: "bob",
			exp:      []string{"bob"},
		},
		"Multiple tags with spaces": {
			hashtags: "bob, short hair ,color",
			exp:      []string{"bob", "short hair", "color"},
		},
		"Empty entries are dropped": {
			hashtags: "bob,,color,",
			exp:      []string{"bob", "color"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := model.Record{Hashtags: tt.hashtags}
			assert.Equal(t, tt.exp, r.HashtagList())
		})
	}
}

func TestCredentials(t *testing.T) {
	t.Run("Valid credentials", func(t *testing.T) {
		c := model.Credentials{UserID: "salon01", Password: "secret"}
		require.NoError(t, c.Validate())
		assert.False(t, c.HasSalonSelector())
	})

	t.Run("Missing user id returns error", func(t *testing.T) {
		c := model.Credentials{Password: "secret"}
		assert.ErrorIs(t, c.Validate(), model.ErrNotValid)
	})

	t.Run("Missing password returns error", func(t *testing.T) {
		c := model.Credentials{UserID: "salon01"}
		assert.ErrorIs(t, c.Validate(), model.ErrNotValid)
	})
}

func TestCredentialsMatchesSalon(t *testing.T) {
	tests := map[string]struct {
		creds    model.Credentials
		id       string
		salon    string
		expMatch bool
	}{
		"Match by id": {
			creds:    model.Credentials{SalonID: "H000111"},
			id:       "H000111",
			salon:    "Salon A",
			expMatch: true,
		},
		"Match by id with cell whitespace": {
			creds:    model.Credentials{SalonID: "H000111"},
			id:       " H000111 ",
			salon:    "Salon A",
			expMatch: true,
		},
		"Match by name when id differs": {
			creds:    model.Credentials{SalonID: "H000999", SalonName: "Salon A"},
			id:       "H000111",
			salon:    "Salon A",
			expMatch: true,
		},
		"No selector never matches": {
			creds:    model.Credentials{},
			id:       "H000111",
			salon:    "Salon A",
			expMatch: false,
		},
		"No match": {
			creds:    model.Credentials{SalonID: "H000999", SalonName: "Salon B"},
			id:       "H000111",
			salon:    "Salon A",
			expMatch: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expMatch, tt.creds.MatchesSalon(tt.id, tt.salon))
		})
	}
}
