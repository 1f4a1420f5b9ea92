package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/kazz187/taskdeck/internal/client"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/settings"
	"github.com/kazz187/taskdeck/internal/task"
)

func getSettings(ctx context.Context, c *client.Client) error {
	s, err := c.GetSettings(ctx)
	if err != nil {
		return err
	}
	printSettings(s)
	return nil
}

func printSettings(s *settings.UserSettings) {
	tw := newTable(os.Stdout)
	fmt.Fprintf(tw, "default view\t%s\n", s.DefaultView)
	fmt.Fprintf(tw, "default category\t%s\n", s.DefaultTaskCategory)
	fmt.Fprintf(tw, "theme\t%s\n", s.Theme)
	fmt.Fprintf(tw, "email notifications\t%t\n", s.EmailNotifications)
	fmt.Fprintf(tw, "desktop notifications\t%t\n", s.DesktopNotifications)
	_ = tw.Flush()
}

func setSettings(ctx context.Context, c *client.Client) error {
	req := &settings.UpdateSettingsRequest{}
	if *settingsSetView != "" {
		v := settings.View(*settingsSetView)
		req.DefaultView = &v
	}
	if *settingsSetTheme != "" {
		th := settings.Theme(*settingsSetTheme)
		req.Theme = &th
	}
	if *settingsSetCategory != "" {
		cat := task.Category(*settingsSetCategory)
		req.DefaultTaskCategory = &cat
	}
	if settingsSetEmailSet {
		req.EmailNotifications = settingsSetEmail
	}
	if settingsSetDesktopSet {
		req.DesktopNotifications = settingsSetDesktop
	}
	s, err := c.UpdateSettings(ctx, req)
	if err != nil {
		return err
	}
	printSettings(s)
	return nil
}

func showOverview(ctx context.Context, c *client.Client) error {
	o, err := c.GetOverview(ctx)
	if err != nil {
		return err
	}
	st := o.Stats
	tw := newTable(os.Stdout)
	fmt.Fprintf(tw, "tasks\t%d\n", st.Total)
	fmt.Fprintf(tw, "completed\t%d (%.0f%%)\n", st.Completed, st.CompletionRate)
	fmt.Fprintf(tw, "active\t%d\n", st.Active)
	fmt.Fprintf(tw, "in progress\t%d\n", st.InProgress)
	fmt.Fprintf(tw, "overdue\t%d\n", st.Overdue)
	fmt.Fprintf(tw, "teams\t%d\n", st.Teams)
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(o.Recent) == 0 {
		return nil
	}
	fmt.Println()
	heading.Println("Recent activity")
	for _, a := range o.Recent {
		fmt.Printf("  %s %-5s %s\n", faint.Sprint(a.Date.Local().Format(time.DateTime)), a.Kind, a.Title)
	}
	return nil
}

func mintToken() error {
	auth := session.NewAuthority(*tokenSecret, *tokenIssuer)
	tok, err := auth.Sign(&session.Session{
		UserID:      *tokenUser,
		Email:       *tokenEmail,
		DisplayName: *tokenName,
	}, *tokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func generateVAPIDKeys() error {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return err
	}
	fmt.Printf("TASKDECK_VAPID_PUBLIC_KEY=%s\n", publicKey)
	fmt.Printf("TASKDECK_VAPID_PRIVATE_KEY=%s\n", privateKey)
	return nil
}
