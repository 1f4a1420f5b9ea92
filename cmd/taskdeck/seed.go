package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/kazz187/taskdeck/internal/client"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/internal/task"
)

var sampleUsers = []session.Session{
	{UserID: "user1", Email: "john.doe@example.com", DisplayName: "John Doe"},
	{UserID: "user2", Email: "jane.smith@example.com", DisplayName: "Jane Smith"},
}

// seed loads the sample data through the API, signing in as each sample
// user with a token minted from the server's secret.
func seed(ctx context.Context, serverURL, secret, issuer string, now time.Time) error {
	auth := session.NewAuthority(secret, issuer)
	clients := make([]*client.Client, len(sampleUsers))
	for i := range sampleUsers {
		tok, err := auth.Sign(&sampleUsers[i], time.Hour)
		if err != nil {
			return err
		}
		clients[i] = client.New(serverURL, client.WithToken(tok))
	}
	john, jane := clients[0], clients[1]

	// Settings are created with defaults on first read.
	for _, c := range clients {
		if _, err := c.GetSettings(ctx); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}

	tm, err := john.CreateTeam(ctx, "Development Team", "Main development team for the project")
	if err != nil {
		return fmt.Errorf("team: %w", err)
	}
	if _, err := john.InviteMembers(ctx, tm.ID, []string{sampleUsers[1].Email}); err != nil {
		return fmt.Errorf("invite: %w", err)
	}
	if _, err := jane.AcceptInvitation(ctx, tm.ID); err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	fmt.Printf("%s team %s (%s)\n", color.GreenString("seeded"), tm.Name, tm.ID)

	inWeek := now.AddDate(0, 0, 7)
	inThreeDays := now.AddDate(0, 0, 3)
	samples := []struct {
		by  *client.Client
		req *task.CreateTaskRequest
	}{
		{john, &task.CreateTaskRequest{
			Title:       "Implement Authentication",
			Description: "Set up authentication and user management",
			Category:    task.CategoryWork,
			Priority:    task.PriorityHigh,
			DueDate:     &inWeek,
			TeamID:      tm.ID,
			AssignedTo:  []string{"user1", "user2"},
		}},
		{jane, &task.CreateTaskRequest{
			Title:       "Design Team Dashboard",
			Description: "Create wireframes and mockups for the team dashboard",
			Category:    task.CategoryWork,
			Priority:    task.PriorityMedium,
			DueDate:     &inThreeDays,
			TeamID:      tm.ID,
			AssignedTo:  []string{"user2"},
		}},
	}
	for _, s := range samples {
		t, err := s.by.CreateTask(ctx, s.req)
		if err != nil {
			return fmt.Errorf("task %q: %w", s.req.Title, err)
		}
		fmt.Printf("%s task %s (%s)\n", color.GreenString("seeded"), t.Title, t.ID)
	}
	return nil
}
