package givebox_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/mscno/givebox"
	"github.com/mscno/givebox/pkg/api"
	"github.com/mscno/givebox/pkg/identity"
	"github.com/mscno/givebox/pkg/route"
	"github.com/mscno/givebox/testutl"
)

const testEmail = "a@b.com"

type recorder struct {
	mu     sync.Mutex
	frames []givebox.Frame
}

func (r *recorder) Render(f givebox.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recorder) all() []givebox.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]givebox.Frame(nil), r.frames...)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recorder) count(match func(givebox.Frame) bool) int {
	n := 0
	for _, f := range r.all() {
		if match(f) {
			n++
		}
	}
	return n
}

type harness struct {
	fake   *testutl.FakeAPI
	ctrl   *givebox.Controller
	store  *identity.MemoryStore
	frames *recorder
	logs   *bytes.Buffer
}

type option func(*givebox.Config)

func withIdentity(email string) option {
	return func(cfg *givebox.Config) {
		_ = cfg.Identity.Save(email)
	}
}

func withClock(now time.Time) option {
	return func(cfg *givebox.Config) {
		cfg.Now = func() time.Time { return now }
	}
}

func setup(t *testing.T, opts ...option) *harness {
	t.Helper()
	fake := testutl.NewFakeAPI(t)
	client, err := api.NewAPIClient(api.ClientConfig{BaseURL: fake.URL(), Timeout: 5 * time.Second})
	assert.NoError(t, err)

	h := &harness{
		fake:   fake,
		store:  identity.NewMemoryStore(),
		frames: &recorder{},
		logs:   &bytes.Buffer{},
	}
	cfg := givebox.Config{
		Client:   client,
		Identity: h.store,
		Renderer: h.frames,
		Logger:   slog.New(slog.NewTextHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	h.ctrl, err = givebox.New(cfg)
	assert.NoError(t, err)
	t.Cleanup(h.ctrl.Close)
	return h
}

func (h *harness) seed() {
	h.fake.AddOrganization(api.Organization{ID: 1, Name: "Food Bank", Description: "Feeding families", LogoURL: "https://example.org/fb.png"}, map[string][]string{
		"Food":    {"Rice", "Canned Beans"},
		"Clothes": {"Winter Jacket"},
	})
	h.fake.AddOrganization(api.Organization{ID: 2, Name: "Shelter"}, nil)
}

// openDetails logs in via the persisted identity and opens NGO 1.
func openDetails(t *testing.T, opts ...option) *harness {
	t.Helper()
	h := setup(t, append([]option{withIdentity(testEmail)}, opts...)...)
	h.seed()
	ctx := context.Background()
	h.ctrl.Start(ctx, "")
	assert.NoError(t, h.ctrl.OpenOrganization(ctx, 1))
	assert.Equal(t, route.ViewDetails, h.ctrl.Frame().View)
	return h
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := givebox.New(givebox.Config{})
	assert.Error(t, err)
}

func TestStart_LoggedOut(t *testing.T) {
	h := setup(t)
	h.ctrl.Start(context.Background(), "")

	f := h.ctrl.Frame()
	assert.Equal(t, route.ViewLogin, f.View)
	assert.Equal(t, givebox.Message{}, f.Login.Message)
	assert.Equal(t, givebox.LabelSendOTP, f.Login.SendButton.Label)
	assert.False(t, f.Login.OTPVisible)
	assert.Equal(t, 1, h.frames.len())
}

func TestStart_PersistedIdentityOpensDashboard(t *testing.T) {
	h := setup(t, withIdentity(testEmail))
	h.seed()
	h.fake.SetDonors(5)
	h.ctrl.Start(context.Background(), "")

	f := h.ctrl.Frame()
	assert.Equal(t, route.ViewDashboard, f.View)
	assert.Equal(t, route.Dashboard, h.ctrl.Location())
	assert.Equal(t, testEmail, f.Dashboard.Identity)
	assert.Equal(t, "5", f.Dashboard.DonorCount)
	assert.Equal(t, givebox.ListReady, f.Dashboard.ListStatus)
	assert.Equal(t, 2, len(f.Dashboard.Organizations))
	assert.Equal(t, "#ngo-details/1", f.Dashboard.Organizations[0].Link)
	assert.Equal(t, "Feeding families", f.Dashboard.Organizations[0].Description)
}

func TestStart_UnknownFragmentShowsLogin(t *testing.T) {
	h := setup(t, withIdentity(testEmail))
	h.ctrl.Start(context.Background(), "#settings")
	assert.Equal(t, route.ViewLogin, h.ctrl.Frame().View)
	assert.Equal(t, "", h.ctrl.Frame().Login.Message.Text)
}

func TestGuard_UnauthenticatedDetails(t *testing.T) {
	for _, id := range []int{0, 1, 7, 9999} {
		h := setup(t)
		ctx := context.Background()
		h.ctrl.Start(ctx, "")
		h.ctrl.Navigate(ctx, route.Details(id))

		f := h.ctrl.Frame()
		assert.Equal(t, route.ViewLogin, f.View)
		assert.Equal(t, givebox.Message{Text: route.MsgLoginForDetails, Tone: givebox.ToneError}, f.Login.Message)
		assert.Equal(t, route.Root, h.ctrl.Location())
		assert.Equal(t, 1, h.frames.count(func(f givebox.Frame) bool {
			return f.Login.Message.Text == route.MsgLoginForDetails
		}))
		assert.Equal(t, 0, h.fake.Calls(testutl.RouteRequirements))
	}
}

func TestGuard_InvalidDetailsID(t *testing.T) {
	h := setup(t, withIdentity(testEmail))
	h.seed()
	h.ctrl.Start(context.Background(), "#ngo-details/abc")

	f := h.ctrl.Frame()
	assert.Equal(t, route.ViewLogin, f.View)
	assert.Equal(t, route.MsgLoginForDetails, f.Login.Message.Text)
	assert.Equal(t, 0, h.fake.Calls(testutl.RouteRequirements))
}

func TestGuard_UnauthenticatedDashboard(t *testing.T) {
	h := setup(t)
	h.ctrl.Start(context.Background(), "#dashboard")

	f := h.ctrl.Frame()
	assert.Equal(t, route.ViewLogin, f.View)
	assert.Equal(t, route.MsgLoginForDashboard, f.Login.Message.Text)
	assert.Equal(t, "", f.Location)
	assert.Equal(t, 1, h.frames.len())
	assert.Equal(t, 0, h.fake.Calls(testutl.RouteNGOs))
}

func TestNavigate_SameLocationIsNoop(t *testing.T) {
	h := setup(t, withIdentity(testEmail))
	h.seed()
	ctx := context.Background()
	h.ctrl.Start(ctx, "dashboard")
	before := h.frames.len()

	h.ctrl.Navigate(ctx, "#dashboard")
	assert.Equal(t, before, h.frames.len())
	assert.Equal(t, 1, h.fake.Calls(testutl.RouteNGOs))

	h.ctrl.Refresh(ctx)
	assert.Equal(t, 2, h.fake.Calls(testutl.RouteNGOs))
}

func TestLogin_Scenario(t *testing.T) {
	h := setup(t)
	h.seed()
	ctx := context.Background()
	h.ctrl.Start(ctx, "")

	assert.NoError(t, h.ctrl.SendOTP(ctx, "  "+testEmail+" "))
	f := h.ctrl.Frame()
	assert.True(t, f.Login.OTPVisible)
	assert.Equal(t, testEmail, f.Login.OTPEmail)
	assert.Equal(t, givebox.LoginOTPRequested, f.Login.State)
	assert.Equal(t, givebox.Message{Text: "OTP sent successfully! (Check backend console for OTP)", Tone: givebox.ToneSuccess}, f.Login.Message)
	assert.Equal(t, givebox.Button{Label: givebox.LabelSendOTP}, f.Login.SendButton)

	assert.NoError(t, h.ctrl.VerifyOTP(ctx, testutl.DefaultOTP))
	stored, err := h.store.Load()
	assert.NoError(t, err)
	assert.Equal(t, testEmail, stored)
	assert.Equal(t, testEmail, h.ctrl.Session().Identity)
	assert.Equal(t, route.Dashboard, h.ctrl.Location())
	assert.Equal(t, route.ViewDashboard, h.ctrl.Frame().View)

	assert.Equal(t, 1, h.frames.count(func(f givebox.Frame) bool {
		return f.View == route.ViewLogin && f.Login.Message == givebox.Message{Text: "Login successful!", Tone: givebox.ToneSuccess}
	}))
	assert.True(t, h.frames.count(func(f givebox.Frame) bool {
		return f.Login.SendButton == givebox.Button{Label: givebox.LabelSending, Disabled: true}
	}) > 0)
	assert.True(t, h.frames.count(func(f givebox.Frame) bool {
		return f.Login.VerifyButton == givebox.Button{Label: givebox.LabelVerifying, Disabled: true}
	}) > 0)
}

func TestLogin_Validation(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	h.ctrl.Start(ctx, "")

	assert.NoError(t, h.ctrl.SendOTP(ctx, "   "))
	assert.Equal(t, givebox.Message{Text: givebox.MsgEmailRequired, Tone: givebox.ToneError}, h.ctrl.Frame().Login.Message)
	assert.Equal(t, 0, h.fake.Calls(testutl.RouteSendOTP))

	assert.NoError(t, h.ctrl.VerifyOTP(ctx, "123456"))
	assert.Equal(t, givebox.MsgEmailOTPRequired, h.ctrl.Frame().Login.Message.Text)

	assert.NoError(t, h.ctrl.SendOTP(ctx, testEmail))
	assert.NoError(t, h.ctrl.VerifyOTP(ctx, ""))
	assert.Equal(t, givebox.MsgEmailOTPRequired, h.ctrl.Frame().Login.Message.Text)
	assert.Equal(t, 0, h.fake.Calls(testutl.RouteVerifyOTP))
}

func TestLogin_WrongOTP(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	h.ctrl.Start(ctx, "")
	assert.NoError(t, h.ctrl.SendOTP(ctx, testEmail))
	assert.NoError(t, h.ctrl.VerifyOTP(ctx, "000000"))

	f := h.ctrl.Frame()
	assert.Equal(t, route.ViewLogin, f.View)
	assert.Equal(t, givebox.Message{Text: "Invalid OTP. Please try again.", Tone: givebox.ToneError}, f.Login.Message)
	assert.Equal(t, givebox.LoginIdle, f.Login.State)
	assert.Equal(t, givebox.Button{Label: givebox.LabelVerify}, f.Login.VerifyButton)
	assert.True(t, f.Login.OTPVisible)
	assert.False(t, h.ctrl.Session().LoggedIn())
}

func TestLogin_TransportFailure(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	h.ctrl.Start(ctx, "")
	h.fake.Drop(testutl.RouteSendOTP)

	assert.NoError(t, h.ctrl.SendOTP(ctx, testEmail))
	f := h.ctrl.Frame()
	assert.Equal(t, givebox.Message{Text: givebox.MsgConnectFailed, Tone: givebox.ToneError}, f.Login.Message)
	assert.False(t, f.Login.OTPVisible)
	assert.Equal(t, givebox.Button{Label: givebox.LabelSendOTP}, f.Login.SendButton)
	assert.Contains(t, h.logs.String(), "error sending OTP")
}

func TestLogin_WrongView(t *testing.T) {
	h := setup(t, withIdentity(testEmail))
	h.ctrl.Start(context.Background(), "")
	assert.IsError(t, h.ctrl.SendOTP(context.Background(), testEmail), givebox.ErrWrongView)
	assert.IsError(t, h.ctrl.VerifyOTP(context.Background(), "1"), givebox.ErrWrongView)
}

func TestLogin_ConfirmationDelay(t *testing.T) {
	h := setup(t, func(cfg *givebox.Config) { cfg.LoginDelay = 20 * time.Millisecond })
	ctx := context.Background()
	h.ctrl.Start(ctx, "")
	assert.NoError(t, h.ctrl.SendOTP(ctx, testEmail))

	start := time.Now()
	assert.NoError(t, h.ctrl.VerifyOTP(ctx, testutl.DefaultOTP))
	assert.True(t, time.Since(start) >= 20*time.Millisecond)
	assert.Equal(t, route.ViewDashboard, h.ctrl.Frame().View)
}

func TestDashboard_DonorsFailure(t *testing.T) {
	h := setup(t, withIdentity(testEmail))
	h.seed()
	h.fake.Fail(testutl.RouteDonorsTotal, http.StatusInternalServerError, "db down")
	h.ctrl.Start(context.Background(), "")

	f := h.ctrl.Frame()
	assert.Equal(t, givebox.DonorCountError, f.Dashboard.DonorCount)
	assert.Contains(t, h.logs.String(), "db down")
	assert.Contains(t, h.logs.String(), "failed to fetch total donors")
	assert.Equal(t, givebox.ListReady, f.Dashboard.ListStatus)
	assert.Equal(t, 2, len(f.Dashboard.Organizations))
}

func TestDashboard_OrganizationOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		prepare     func(h *harness)
		status      givebox.ListStatus
		placeholder string
	}{
		{"Empty", func(h *harness) {}, givebox.ListEmpty, givebox.MsgNoOrganizations},
		{"HTTPError", func(h *harness) {
			h.fake.Fail(testutl.RouteNGOs, http.StatusInternalServerError, "boom")
		}, givebox.ListError, "Error loading NGOs: boom"},
		{"Transport", func(h *harness) {
			h.fake.Drop(testutl.RouteNGOs)
		}, givebox.ListError, givebox.MsgOrganizationsFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t, withIdentity(testEmail))
			tt.prepare(h)
			h.ctrl.Start(context.Background(), "")

			f := h.ctrl.Frame()
			assert.Equal(t, tt.status, f.Dashboard.ListStatus)
			assert.Equal(t, tt.placeholder, f.Dashboard.Placeholder)
			assert.Equal(t, 0, len(f.Dashboard.Organizations))
			assert.Equal(t, "0", f.Dashboard.DonorCount)
		})
	}
}

func TestDashboard_LoadingPlaceholder(t *testing.T) {
	h := setup(t, withIdentity(testEmail))
	h.ctrl.Start(context.Background(), "")
	first := h.frames.all()[0]
	assert.Equal(t, route.ViewDashboard, first.View)
	assert.Equal(t, givebox.ListLoading, first.Dashboard.ListStatus)
	assert.Equal(t, givebox.MsgLoadingOrganizations, first.Dashboard.Placeholder)
}

func TestOpenOrganization(t *testing.T) {
	h := setup(t, withIdentity(testEmail))
	h.seed()
	ctx := context.Background()
	h.ctrl.Start(ctx, "")

	assert.IsError(t, h.ctrl.OpenOrganization(ctx, 42), givebox.ErrUnknownOrganization)
	assert.NoError(t, h.ctrl.OpenOrganization(ctx, 2))
	assert.Equal(t, "ngo-details/2", h.ctrl.Location())
	assert.IsError(t, h.ctrl.OpenOrganization(ctx, 1), givebox.ErrWrongView)
}

func TestDetails_Render(t *testing.T) {
	h := openDetails(t)
	f := h.ctrl.Frame()

	assert.Equal(t, "Food Bank - Requirements", f.Details.Title)
	assert.Equal(t, givebox.ListReady, f.Details.ListStatus)
	assert.Equal(t, 1, f.Details.OrganizationID)
	assert.Equal(t, []givebox.Checkbox{
		{Index: 1, ID: "item-Clothes-Winter-Jacket", Category: "Clothes", Item: "Winter Jacket"},
		{Index: 2, ID: "item-Food-Rice", Category: "Food", Item: "Rice"},
		{Index: 3, ID: "item-Food-Canned-Beans", Category: "Food", Item: "Canned Beans"},
	}, f.Details.Checkboxes())
	for _, kind := range api.ActionKinds {
		assert.Equal(t, givebox.Button{Label: kind.Label(), Disabled: true}, f.Details.Buttons.Get(kind))
	}
	id := h.ctrl.Session().SelectedOrganization
	assert.NotZero(t, id)
	assert.Equal(t, 1, *id)

	first := h.frames.all()
	loading := first[len(first)-2]
	assert.Equal(t, givebox.TitleLoadingDetails, loading.Details.Title)
	assert.Equal(t, givebox.MsgLoadingRequirements, loading.Details.Placeholder)
}

func TestDetails_EmptyCatalog(t *testing.T) {
	h := setup(t, withIdentity(testEmail))
	h.seed()
	h.ctrl.Start(context.Background(), "#ngo-details/2")

	f := h.ctrl.Frame()
	assert.Equal(t, "Shelter - Requirements", f.Details.Title)
	assert.Equal(t, givebox.ListEmpty, f.Details.ListStatus)
	assert.Equal(t, givebox.MsgNoRequirements, f.Details.Placeholder)
}

func TestDetails_Errors(t *testing.T) {
	h := setup(t, withIdentity(testEmail))
	ctx := context.Background()
	h.ctrl.Start(ctx, "#ngo-details/77")

	f := h.ctrl.Frame()
	assert.Equal(t, givebox.TitleError, f.Details.Title)
	assert.Equal(t, "Error loading NGO requirements: NGO not found", f.Details.Placeholder)

	h.seed()
	h.fake.Drop(testutl.RouteRequirements)
	h.ctrl.Navigate(ctx, "#ngo-details/1")
	f = h.ctrl.Frame()
	assert.Equal(t, givebox.TitleError, f.Details.Title)
	assert.Equal(t, givebox.MsgRequirementsFailed, f.Details.Placeholder)
}

func TestDetails_LeavingClearsSelection(t *testing.T) {
	h := openDetails(t)
	ctx := context.Background()
	assert.NoError(t, h.ctrl.ToggleIndex(1))
	h.ctrl.Back(ctx)

	assert.Equal(t, route.ViewDashboard, h.ctrl.Frame().View)
	assert.Equal(t, 0, len(h.ctrl.Selection()))
	assert.Zero(t, h.ctrl.Session().SelectedOrganization)
}

func TestEligible(t *testing.T) {
	for _, selected := range []bool{false, true} {
		for _, cost := range []string{"", " ", "100"} {
			for _, year := range []string{"", "2022"} {
				filled := cost != "" && cost != " " && year != ""
				assert.Equal(t, selected, givebox.Eligible(api.ActionDonate, selected, cost, year))
				assert.Equal(t, selected, givebox.Eligible(api.ActionGiveaway, selected, cost, year))
				assert.Equal(t, selected && filled, givebox.Eligible(api.ActionResale, selected, cost, year))
			}
		}
	}
}

func TestToggle_RestoresSelection(t *testing.T) {
	h := openDetails(t)
	assert.NoError(t, h.ctrl.ToggleItem("Food", "Rice", true))

	f := h.ctrl.Frame()
	assert.False(t, f.Details.Buttons.Donate.Disabled)
	assert.False(t, f.Details.Buttons.Giveaway.Disabled)
	assert.True(t, f.Details.Buttons.Resale.Disabled)
	assert.True(t, f.Details.Checkboxes()[1].Checked)

	assert.NoError(t, h.ctrl.ToggleItem("Food", "Rice", false))
	f = h.ctrl.Frame()
	assert.Equal(t, 0, len(h.ctrl.Selection()))
	assert.True(t, f.Details.Buttons.Donate.Disabled)
	assert.True(t, f.Details.Buttons.Giveaway.Disabled)
}

func TestToggle_UnknownItem(t *testing.T) {
	h := openDetails(t)
	assert.IsError(t, h.ctrl.ToggleItem("Food", "Caviar", true), givebox.ErrUnknownItem)
	assert.IsError(t, h.ctrl.ToggleIndex(4), givebox.ErrUnknownItem)
	assert.IsError(t, h.ctrl.ToggleIndex(0), givebox.ErrUnknownItem)
}

func TestToggle_WrongView(t *testing.T) {
	h := setup(t)
	h.ctrl.Start(context.Background(), "")
	assert.IsError(t, h.ctrl.ToggleIndex(1), givebox.ErrWrongView)
	assert.IsError(t, h.ctrl.SetOriginalCost("1"), givebox.ErrWrongView)
	assert.IsError(t, h.ctrl.Submit(context.Background(), api.ActionDonate), givebox.ErrWrongView)
}

func TestResaleFieldsEnableResale(t *testing.T) {
	h := openDetails(t, withClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.NoError(t, h.ctrl.ToggleIndex(1))
	assert.NoError(t, h.ctrl.SetOriginalCost("200"))
	assert.True(t, h.ctrl.Frame().Details.Buttons.Resale.Disabled)
	assert.Zero(t, h.ctrl.Frame().Details.ResaleEstimate)

	assert.NoError(t, h.ctrl.SetPurchaseYear("2022"))
	f := h.ctrl.Frame()
	assert.False(t, f.Details.Buttons.Resale.Disabled)
	assert.NotZero(t, f.Details.ResaleEstimate)
	assert.Equal(t, 40.0, *f.Details.ResaleEstimate)

	assert.NoError(t, h.ctrl.SetPurchaseYear("  "))
	assert.True(t, h.ctrl.Frame().Details.Buttons.Resale.Disabled)
}

func TestSubmit_DonateScenario(t *testing.T) {
	h := openDetails(t)
	ctx := context.Background()
	assert.Equal(t, 1, h.fake.Calls(testutl.RouteDonorsTotal))

	assert.NoError(t, h.ctrl.ToggleItem("Food", "Rice", true))
	assert.NoError(t, h.ctrl.ToggleItem("Clothes", "Winter Jacket", true))
	assert.NoError(t, h.ctrl.Submit(ctx, api.ActionDonate))

	donations := h.fake.Donations()
	assert.Equal(t, 1, len(donations))
	assert.Equal(t, api.DonationActionRequest{
		UserEmail:      testEmail,
		OrganizationID: 1,
		ActionType:     api.ActionDonate,
		SelectedItems: []api.ItemRecord{
			{Category: "Food", Item: "Rice", Quantity: 1},
			{Category: "Clothes", Item: "Winter Jacket", Quantity: 1},
		},
	}, donations[0])

	f := h.ctrl.Frame()
	assert.Equal(t, givebox.Message{Text: "Thank you for your donate! Your contribution has been recorded.", Tone: givebox.ToneSuccess}, f.Details.Message)
	assert.Equal(t, 0, len(h.ctrl.Selection()))
	for _, box := range f.Details.Checkboxes() {
		assert.False(t, box.Checked)
	}
	for _, kind := range api.ActionKinds {
		assert.Equal(t, givebox.Button{Label: kind.Label(), Disabled: true}, f.Details.Buttons.Get(kind))
	}
	assert.Equal(t, 2, h.fake.Calls(testutl.RouteDonorsTotal))
	assert.Equal(t, "1", f.Dashboard.DonorCount)

	busy := h.frames.count(func(f givebox.Frame) bool {
		b := f.Details.Buttons
		return b.Donate == givebox.Button{Label: givebox.LabelWorking, Disabled: true} &&
			b.Giveaway.Disabled && b.Resale.Disabled && b.Giveaway.Label == "Giveaway"
	})
	assert.Equal(t, 1, busy)
}

func TestSubmit_NothingSelected(t *testing.T) {
	h := openDetails(t)
	assert.NoError(t, h.ctrl.Submit(context.Background(), api.ActionGiveaway))
	assert.Equal(t, givebox.Message{Text: givebox.MsgSelectItem, Tone: givebox.ToneError}, h.ctrl.Frame().Details.Message)
	assert.Equal(t, 0, h.fake.Calls(testutl.RouteDonate))
}

func TestSubmit_ResaleValidation(t *testing.T) {
	tests := []struct {
		name string
		cost string
		year string
		want string
	}{
		{"MissingCost", "", "2020", givebox.MsgResaleFieldsRequired},
		{"MissingYear", "10", "", givebox.MsgResaleFieldsRequired},
		{"BadCost", "ten", "2020", givebox.MsgCostNotNumber},
		{"BadYear", "10", "2020.5", givebox.MsgYearNotWhole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := openDetails(t)
			assert.NoError(t, h.ctrl.ToggleIndex(2))
			assert.NoError(t, h.ctrl.SetOriginalCost(tt.cost))
			assert.NoError(t, h.ctrl.SetPurchaseYear(tt.year))
			assert.NoError(t, h.ctrl.Submit(context.Background(), api.ActionResale))

			assert.Equal(t, givebox.Message{Text: tt.want, Tone: givebox.ToneError}, h.ctrl.Frame().Details.Message)
			assert.Equal(t, 0, h.fake.Calls(testutl.RouteDonate))
			assert.Equal(t, 1, len(h.ctrl.Selection()))
		})
	}
}

func TestSubmit_Resale(t *testing.T) {
	h := openDetails(t)
	assert.NoError(t, h.ctrl.ToggleIndex(1))
	assert.NoError(t, h.ctrl.SetOriginalCost(" 150.5 "))
	assert.NoError(t, h.ctrl.SetPurchaseYear("2021"))
	assert.NoError(t, h.ctrl.Submit(context.Background(), api.ActionResale))

	donations := h.fake.Donations()
	assert.Equal(t, 1, len(donations))
	assert.Equal(t, api.ActionResale, donations[0].ActionType)
	assert.Equal(t, 150.5, *donations[0].OriginalCost)
	assert.Equal(t, 2021, *donations[0].PurchaseYear)

	f := h.ctrl.Frame()
	assert.Equal(t, "", f.Details.OriginalCost)
	assert.Equal(t, "", f.Details.PurchaseYear)
	assert.Zero(t, f.Details.ResaleEstimate)
}

func TestSubmit_FailuresKeepSelection(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *testutl.FakeAPI)
		want    string
	}{
		{"HTTPError", func(f *testutl.FakeAPI) {
			f.Fail(testutl.RouteDonate, http.StatusBadRequest, "Missing required data")
		}, "Missing required data"},
		{"Transport", func(f *testutl.FakeAPI) {
			f.Drop(testutl.RouteDonate)
		}, givebox.MsgConnectFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := openDetails(t)
			tt.prepare(h.fake)
			assert.NoError(t, h.ctrl.ToggleIndex(3))
			assert.NoError(t, h.ctrl.Submit(context.Background(), api.ActionGiveaway))

			f := h.ctrl.Frame()
			assert.Equal(t, givebox.Message{Text: tt.want, Tone: givebox.ToneError}, f.Details.Message)
			assert.Equal(t, 1, len(h.ctrl.Selection()))
			assert.True(t, f.Details.Checkboxes()[2].Checked)
			assert.Equal(t, givebox.Button{Label: "Giveaway"}, f.Details.Buttons.Giveaway)
			assert.Equal(t, givebox.Button{Label: "Donate"}, f.Details.Buttons.Donate)
			assert.Equal(t, givebox.Button{Label: "Resale", Disabled: true}, f.Details.Buttons.Resale)
			assert.Equal(t, 1, h.fake.Calls(testutl.RouteDonorsTotal))
		})
	}
}

func TestSubmit_UnknownKind(t *testing.T) {
	h := openDetails(t)
	assert.Error(t, h.ctrl.Submit(context.Background(), api.ActionKind("sell")))
}

func TestStaleDetailsResponseDiscarded(t *testing.T) {
	h := setup(t, withIdentity(testEmail))
	h.seed()
	ctx := context.Background()
	h.ctrl.Start(ctx, "")

	release := h.fake.Hold(testutl.RouteRequirements)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ctrl.Navigate(ctx, "ngo-details/1")
	}()
	waitFor(t, func() bool { return h.fake.Calls(testutl.RouteRequirements) == 1 })

	h.ctrl.Navigate(ctx, route.Dashboard)
	mark := h.frames.len()
	release()
	<-done

	f := h.ctrl.Frame()
	assert.Equal(t, route.ViewDashboard, f.View)
	assert.Zero(t, h.ctrl.Session().SelectedOrganization)
	for _, later := range h.frames.all()[mark:] {
		assert.Equal(t, route.ViewDashboard, later.View)
	}
	assert.NotEqual(t, "Food Bank - Requirements", f.Details.Title)
}

func TestStaleSubmitDiscarded(t *testing.T) {
	h := openDetails(t)
	ctx := context.Background()
	assert.NoError(t, h.ctrl.ToggleIndex(1))

	release := h.fake.Hold(testutl.RouteDonate)
	done := make(chan error, 1)
	go func() { done <- h.ctrl.Submit(ctx, api.ActionDonate) }()
	waitFor(t, func() bool { return h.fake.Calls(testutl.RouteDonate) == 1 })

	h.ctrl.Back(ctx)
	release()
	assert.NoError(t, <-done)
	assert.Equal(t, route.ViewDashboard, h.ctrl.Frame().View)
	assert.Equal(t, "", h.ctrl.Frame().Details.Message.Text)
}

func TestLogout(t *testing.T) {
	h := openDetails(t)
	assert.NoError(t, h.ctrl.Logout(context.Background()))

	f := h.ctrl.Frame()
	assert.Equal(t, route.ViewLogin, f.View)
	assert.Equal(t, givebox.Message{Text: givebox.MsgLoggedOut, Tone: givebox.ToneInfo}, f.Login.Message)
	assert.Equal(t, route.Root, h.ctrl.Location())
	assert.False(t, h.ctrl.Session().LoggedIn())
	stored, err := h.store.Load()
	assert.NoError(t, err)
	assert.Equal(t, "", stored)

	h.ctrl.Navigate(context.Background(), route.Dashboard)
	assert.Equal(t, route.MsgLoginForDashboard, h.ctrl.Frame().Login.Message.Text)
}

func TestResaleEstimate(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		year int
		want float64
	}{
		{2026, 30},
		{2025, 30},
		{2023, 30},
		{2022, 20},
		{2021, 10},
		{1999, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, givebox.ResaleEstimate(100, tt.year, now))
	}
}

func TestCheckboxID(t *testing.T) {
	assert.Equal(t, "item-Kids-Story-Books", givebox.CheckboxID("Kids", "Story Books"))
	assert.Equal(t, "item-Food-Rice-and-Beans", givebox.CheckboxID("Food", "Rice \t and  Beans"))
}
