package compiler

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/normalize"
)

func salonConfig() form.Config {
	cfg := form.Default()
	cfg.BasicInfo.Title = "Cut Reservation"
	cfg.BasicInfo.StoreName = "Salon Wakuwaku"
	cfg.BasicInfo.ThemeColor = "#E91E63"
	cfg.UISettings.ThemeColor = "#E91E63"
	cfg.WebhookEndpoint = "https://example.com/hook"
	cfg.MenuStructure.Categories = []form.Category{
		{
			ID:    "cat-cut",
			Label: "カット",
			Menus: []form.Menu{{
				ID:           "menu-cut",
				Name:         "カット",
				Description:  "シャンプー・ブロー込み",
				Price:        4000,
				Duration:     60,
				SubMenuItems: []form.SubMenuItem{},
				Options: []form.Option{
					{ID: "opt-treatment", Name: "トリートメント", Price: 1500, Duration: 30, IsDefault: true},
				},
			}},
		},
		{
			ID:    "cat-color",
			Label: "カラー",
			Menus: []form.Menu{{
				ID:         "menu-color",
				Name:       "カラー",
				Price:      6000,
				Duration:   90,
				HasSubmenu: true,
				SubMenuItems: []form.SubMenuItem{
					{ID: "sub-short", Name: "ショート", Price: 6000, Duration: 90},
					{ID: "sub-long", Name: "ロング", Price: 8000, Duration: 120},
				},
				Options: []form.Option{},
			}},
		},
	}
	return cfg
}

func loadRecord(t *testing.T, name string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "normalize", "testdata", "records", name))
	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	return record
}

func TestCompileDeterministic(t *testing.T) {
	cfg := salonConfig()

	a := MustCompile(cfg)
	b := MustCompile(cfg)

	assert.Equal(t, a.Hash, b.Hash)
	assert.True(t, bytes.Equal(a.Markup, b.Markup), "markup differs")
	assert.True(t, bytes.Equal(a.Style, b.Style), "style differs")
	assert.True(t, bytes.Equal(a.Script, b.Script), "script differs")
	assert.True(t, bytes.Equal(a.Document, b.Document), "document differs")

	assert.Equal(t, a.Key, b.Key)
	assert.Equal(t, form.ArtifactHash(a.Markup, a.Style, a.Script, a.Document), a.Hash)

	configHash, err := form.ContentHash(cfg)
	require.NoError(t, err)
	assert.Equal(t, form.BuildKey(configHash, Fingerprint()), a.Key)
}

func TestArtifactIdentityFollowsRuntime(t *testing.T) {
	cfg := salonConfig()
	before := MustCompile(cfg)

	original := runtimeSource
	t.Cleanup(func() { runtimeSource = original })
	runtimeSource = original + "\n// patched\n"

	after := MustCompile(cfg)
	assert.NotEqual(t, before.Hash, after.Hash, "output hash must change with the runtime")
	assert.NotEqual(t, before.Key, after.Key, "cache key must change with the runtime")

	key, err := Key(cfg)
	require.NoError(t, err)
	assert.Equal(t, after.Key, key)
}

func TestArtifactHashDiffersAcrossConfigs(t *testing.T) {
	cfg := salonConfig()
	a := MustCompile(cfg)
	cfg.BasicInfo.Title = "別のタイトル"
	b := MustCompile(cfg)

	assert.NotEqual(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Key, b.Key)
}

func TestEmbeddedConfigRoundTrip(t *testing.T) {
	for _, name := range []string{"canonical.json", "flat.json", "nested.json", "mixed.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := normalize.Normalize(loadRecord(t, name))

			a, err := Compile(cfg)
			require.NoError(t, err)

			back, err := EmbeddedConfig(a.Script)
			require.NoError(t, err)
			assert.Equal(t, cfg, back)
		})
	}
}

func TestScriptLayout(t *testing.T) {
	a := MustCompile(salonConfig())

	first, rest, ok := bytes.Cut(a.Script, []byte("\n"))
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(first, []byte(ScriptPrefix)))
	assert.True(t, bytes.HasSuffix(first, []byte(";")))
	assert.Equal(t, runtimeSource, string(rest))
	assert.NotContains(t, runtimeSource, "</")
	assert.Contains(t, runtimeSource, "function placeholderAvailability(")
	assert.Contains(t, runtimeSource, "window.bookingAvailability")
}

func TestAuthorContentIsEscaped(t *testing.T) {
	cfg := salonConfig()
	cfg.BasicInfo.Title = `<script>alert("x")</script> & Co`
	cfg.BasicInfo.StoreName = "Tom's\u2028Salon"
	cfg.MenuStructure.Categories[0].Menus[0].Name = `</script><img src=x onerror=alert(1)>`
	cfg.BasicInfo.LogoURL = "javascript:alert(1)"

	a, err := Compile(cfg)
	require.NoError(t, err)

	markup := string(a.Markup)
	assert.NotContains(t, markup, "<script>alert")
	assert.Contains(t, markup, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; &amp; Co")
	assert.Contains(t, markup, "&lt;/script&gt;&lt;img src=x onerror=alert(1)&gt;")
	assert.NotContains(t, markup, "javascript:alert")

	script := string(a.Script)
	assert.NotContains(t, script, "</script")
	assert.NotContains(t, script, "\u2028")
	assert.Contains(t, script, `Tom's\u2028Salon`)
	assert.Contains(t, script, `\u003cscript\u003ealert(\"x\")\u003c/script\u003e \u0026 Co`)

	doc := string(a.Document)
	assert.Equal(t, 1, strings.Count(doc, "</script>"), "only the inline script element closes")

	back, err := EmbeddedConfig(a.Script)
	require.NoError(t, err)
	assert.Equal(t, cfg.BasicInfo.Title, back.BasicInfo.Title)
	assert.Equal(t, cfg.BasicInfo.StoreName, back.BasicInfo.StoreName)
}

func TestDisabledSectionsAbsent(t *testing.T) {
	cfg := salonConfig()
	cfg.GenderSelection.Enabled = false
	cfg.GenderSelection.Required = true
	cfg.CouponSelection.Enabled = true

	markup := string(MustCompile(cfg).Markup)

	assert.NotContains(t, markup, `id="section-gender"`)
	assert.NotContains(t, markup, "男性")
	assert.NotContains(t, markup, `id="section-visit-count"`)
	assert.Contains(t, markup, `id="section-coupon"`)
	assert.Contains(t, markup, `name="coupon" value="use"`)
}

func TestAbsentSectionsCompile(t *testing.T) {
	cfg := form.Config{
		BasicInfo: form.BasicInfo{Title: "最小", ThemeColor: "#3B82F6"},
	}

	a, err := Compile(cfg)
	require.NoError(t, err)

	markup := string(a.Markup)
	assert.Contains(t, markup, "現在ご予約いただけるメニューはありません")
	assert.NotContains(t, markup, `data-selection=`)
	assert.NotContains(t, markup, "sdk.js")
	assert.Contains(t, string(a.Style), "--radius: 8px;")

	key, err := Key(cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Key, key, "Key settles absent lists like Compile")

	back, err := EmbeddedConfig(a.Script)
	require.NoError(t, err)
	assert.NotNil(t, back.MenuStructure.Categories)
	assert.NotNil(t, back.GenderSelection.Options)
}

func TestMarkupFeatures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*form.Config)
		want    []string
		wantNot []string
	}{
		{
			name:    "category tabs when cross selection is off",
			mutate:  func(c *form.Config) { c.MenuStructure.AllowCrossCategorySelection = false },
			want:    []string{`data-tab="cat-cut"`, `data-category="cat-color" hidden`},
			wantNot: []string{"<h3>カット</h3>"},
		},
		{
			name:    "all categories listed when cross selection is on",
			mutate:  func(c *form.Config) { c.MenuStructure.AllowCrossCategorySelection = true },
			want:    []string{"<h3>カット</h3>", "<h3>カラー</h3>"},
			wantNot: []string{"data-tab="},
		},
		{
			name:    "display options",
			mutate:  func(c *form.Config) { c.MenuStructure.DisplayOptions = form.DisplayOptions{ShowDuration: true} },
			want:    []string{`<span class="duration">60分</span>`},
			wantNot: []string{"¥4,000", "シャンプー・ブロー込み"},
		},
		{
			name: "prices and descriptions",
			want: []string{`<span class="price">¥4,000</span>`, `<span class="price">+¥1,500</span>`, "シャンプー・ブロー込み"},
		},
		{
			name:   "identity sdk",
			mutate: func(c *form.Config) { c.BasicInfo.LiffID = "1234567890-abcdefgh" },
			want:   []string{"https://static.line-scdn.net/liff/edge/2/sdk.js"},
		},
		{
			name: "side nav and repeat booking",
			mutate: func(c *form.Config) {
				c.UISettings.ShowSideNav = true
				c.UISettings.ShowRepeatBooking = true
			},
			want: []string{`class="side-nav"`, `href="#section-summary"`, `data-action="repeat-booking"`},
		},
		{
			name:    "no side nav by default",
			wantNot: []string{`class="side-nav"`, `data-action="repeat-booking"`},
		},
		{
			name: "multi date",
			mutate: func(c *form.Config) {
				c.CalendarSettings.MultiDateSettings = form.MultiDateSettings{Enabled: true, MaxDates: 3}
			},
			want: []string{`data-alternates data-max="2"`},
		},
		{
			name:   "list booking mode",
			mutate: func(c *form.Config) { c.CalendarSettings.BookingMode = form.BookingList },
			want:   []string{`data-mode="list"`},
		},
		{
			name:   "default option marked",
			want:   []string{`data-option="opt-treatment" data-default="true"`, `data-submenus-for="menu-color" hidden`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := salonConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			markup := string(MustCompile(cfg).Markup)
			for _, w := range tt.want {
				assert.Contains(t, markup, w)
			}
			for _, w := range tt.wantNot {
				assert.NotContains(t, markup, w)
			}
		})
	}
}

func TestDocumentInlinesAssets(t *testing.T) {
	a := MustCompile(salonConfig())

	assert.Contains(t, string(a.Markup), `<link rel="stylesheet" href="style.css">`)
	assert.Contains(t, string(a.Markup), `<script src="app.js"></script>`)

	doc := string(a.Document)
	assert.NotContains(t, doc, `href="style.css"`)
	assert.NotContains(t, doc, `src="app.js"`)
	assert.Contains(t, doc, "<style>"+string(a.Style)+"</style>")
	assert.Contains(t, doc, "<script>"+string(a.Script)+"</script>")

	files := a.Files()
	assert.Len(t, files, 4)
	assert.Equal(t, a.Document, files[FileDocument])
	assert.Equal(t, a.Script, files[FileScript])
}

func TestStyleGolden(t *testing.T) {
	cfg := salonConfig()
	cfg.UISettings.ButtonStyle = form.ButtonPill

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "style_pill", MustCompile(cfg).Style)
}

func TestMustCompilePanicsOnContractViolation(t *testing.T) {
	cfg := salonConfig()
	cfg.BasicInfo.Title = ""

	assert.Panics(t, func() { MustCompile(cfg) })

	_, err := Compile(cfg)
	var contract *ContractError
	require.ErrorAs(t, err, &contract)
	assert.Equal(t, ErrTitleMissing, contract.Violations[0].Code)
}
