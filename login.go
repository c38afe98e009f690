package givebox

import (
	"context"
	"strings"
	"time"

	"github.com/mscno/givebox/pkg/api"
	"github.com/mscno/givebox/pkg/route"
)

// Validation messages of the login view.
const (
	MsgEmailRequired    = "Email is required."
	MsgEmailOTPRequired = "Email and OTP are required."
	otpHint             = " (Check backend console for OTP)"
)

func defaultLoginPanel() LoginPanel {
	return LoginPanel{
		State:        LoginIdle,
		SendButton:   Button{Label: LabelSendOTP},
		VerifyButton: Button{Label: LabelVerify},
	}
}

// showLoginLocked switches to the login view, resetting its fields.
func (c *Controller) showLoginLocked(msg Message) {
	c.frame.View = route.ViewLogin
	c.frame.Login = defaultLoginPanel()
	c.frame.Login.Message = msg
}

// SendOTP submits email and, on success, reveals the passcode section.
func (c *Controller) SendOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	c.mu.Lock()
	if c.frame.View != route.ViewLogin {
		c.mu.Unlock()
		return ErrWrongView
	}
	login := &c.frame.Login
	if login.SendButton.Disabled {
		c.mu.Unlock()
		return ErrBusy
	}
	login.Email = email
	if email == "" {
		login.Message = errorMessage(MsgEmailRequired)
		c.renderLocked()
		c.mu.Unlock()
		return nil
	}
	login.State = LoginAwaitingSend
	login.SendButton = Button{Label: LabelSending, Disabled: true}
	login.Message = Message{}
	epoch := c.epoch
	c.renderLocked()
	c.mu.Unlock()

	reqCtx, done := c.scope(ctx)
	msg, err := c.client.SendOTP(reqCtx, email)
	done()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(ctx, epoch, "send_otp") {
		return nil
	}
	login = &c.frame.Login
	if err == nil {
		login.State = LoginOTPRequested
		login.OTPVisible = true
		login.OTPEmail = email
		login.Message = successMessage(msg + otpHint)
	} else {
		if !isHTTPError(err) {
			c.logger.ErrorContext(ctx, "error sending OTP", "error", err)
		}
		login.State = LoginIdle
		login.Message = errorMessage(failureText(err, MsgConnectFailed))
	}
	login.SendButton = Button{Label: LabelSendOTP}
	c.renderLocked()
	return nil
}

// VerifyOTP checks otp for the e-mail shown in the passcode section. On
// success the identity is persisted and the dashboard opens.
func (c *Controller) VerifyOTP(ctx context.Context, otp string) error {
	otp = strings.TrimSpace(otp)

	c.mu.Lock()
	if c.frame.View != route.ViewLogin {
		c.mu.Unlock()
		return ErrWrongView
	}
	login := &c.frame.Login
	if login.VerifyButton.Disabled {
		c.mu.Unlock()
		return ErrBusy
	}
	email := strings.TrimSpace(login.OTPEmail)
	if email == "" || otp == "" {
		login.Message = errorMessage(MsgEmailOTPRequired)
		c.renderLocked()
		c.mu.Unlock()
		return nil
	}
	login.State = LoginAwaitingVerify
	login.VerifyButton = Button{Label: LabelVerifying, Disabled: true}
	login.Message = Message{}
	epoch := c.epoch
	c.renderLocked()
	c.mu.Unlock()

	reqCtx, done := c.scope(ctx)
	msg, err := c.client.VerifyOTP(reqCtx, email, otp)
	done()

	c.mu.Lock()
	if !c.currentLocked(ctx, epoch, "verify_otp") {
		c.mu.Unlock()
		return nil
	}
	login = &c.frame.Login
	login.VerifyButton = Button{Label: LabelVerify}
	if err != nil {
		if !isHTTPError(err) {
			c.logger.ErrorContext(ctx, "error verifying OTP", "error", err)
		}
		login.State = LoginIdle
		login.Message = errorMessage(failureText(err, MsgConnectFailed))
		c.renderLocked()
		c.mu.Unlock()
		return nil
	}

	login.Message = successMessage(msg)
	if err := c.store.Save(email); err != nil {
		c.logger.ErrorContext(ctx, "failed to persist identity", "error", err)
	}
	c.session.Identity = email
	c.frame.Dashboard.Identity = email
	c.logger.InfoContext(ctx, "logged in", "email", email)
	c.renderLocked()
	c.mu.Unlock()

	if c.loginDelay > 0 {
		t := time.NewTimer(c.loginDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}

	c.mu.Lock()
	stale := epoch != c.epoch
	c.mu.Unlock()
	if stale {
		return nil
	}
	c.Navigate(ctx, route.Dashboard)
	return nil
}

func isHTTPError(err error) bool {
	_, ok := api.AsHTTPError(err)
	return ok
}
