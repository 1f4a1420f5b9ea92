package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/kazz187/taskdeck/internal/client"
)

func listTeams(ctx context.Context, c *client.Client) error {
	teams, err := c.ListTeams(ctx)
	if err != nil {
		return err
	}
	tw := newTable(os.Stdout)
	fmt.Fprintln(tw, heading.Sprint("ID\tNAME\tMEMBERS\tINVITED"))
	for _, t := range teams {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", t.ID, t.Name, len(t.Members), len(t.InvitedEmails))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	invites, err := c.ListInvitations(ctx)
	if err != nil {
		return err
	}
	if len(invites) == 0 {
		return nil
	}
	fmt.Println()
	heading.Println("Invitations")
	for _, inv := range invites {
		fmt.Printf("  %s %s (%d members)\n", faint.Sprint(inv.TeamID), inv.TeamName, inv.MemberCount)
	}
	return nil
}

func createTeam(ctx context.Context, c *client.Client) error {
	t, err := c.CreateTeam(ctx, *teamsCreateName, *teamsCreateDescription)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", color.GreenString("created"), t.ID)
	return nil
}

func inviteMembers(ctx context.Context, c *client.Client) error {
	resp, err := c.InviteMembers(ctx, *teamsInviteTeam, *teamsInviteEmails)
	if err != nil {
		return err
	}
	if len(resp.Invited) == 0 {
		fmt.Println(faint.Sprint("everyone is already a member or invited"))
		return nil
	}
	for _, e := range resp.Invited {
		fmt.Printf("%s %s\n", color.GreenString("invited"), e)
	}
	return nil
}

func acceptInvitation(ctx context.Context, c *client.Client) error {
	t, err := c.AcceptInvitation(ctx, *teamsAcceptTeam)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", color.GreenString("joined"), t.Name)
	return nil
}
