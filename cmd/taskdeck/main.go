package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kazz187/taskdeck/internal/client"
)

var settingsSetEmailSet, settingsSetDesktopSet bool

var (
	app = kingpin.New("taskdeck", "Task board for people and teams")

	serverURL = app.Flag("server", "taskdeck server URL").Envar("TASKDECK_SERVER_URL").Default("http://localhost:3100").String()
	token     = app.Flag("token", "Bearer token (see `taskdeck token`)").Envar("TASKDECK_TOKEN").String()
	timeout   = app.Flag("timeout", "Request timeout").Default("30s").Duration()

	// Task commands
	tasksCmd = app.Command("tasks", "Manage tasks")

	tasksListCmd      = tasksCmd.Command("list", "List tasks").Default()
	tasksListScope    = tasksListCmd.Flag("scope", "own, team, assigned or all").Default("all").Enum("own", "team", "assigned", "all")
	tasksListTeam     = tasksListCmd.Flag("team", "Team ID (scope team)").String()
	tasksListSearch   = tasksListCmd.Flag("search", "Search in title and description").Short('q').String()
	tasksListCategory = tasksListCmd.Flag("category", "Category").Default("all").String()
	tasksListPriority = tasksListCmd.Flag("priority", "Priority").Default("all").String()
	tasksListStatus   = tasksListCmd.Flag("status", "all, completed or incomplete").Default("all").Enum("all", "completed", "incomplete")
	tasksListSort     = tasksListCmd.Flag("sort", "dueDate, priority, createdAt or title").Default("createdAt").Enum("dueDate", "priority", "createdAt", "title")
	tasksListAsc      = tasksListCmd.Flag("asc", "Sort ascending").Bool()

	tasksBoardCmd   = tasksCmd.Command("board", "Show the board")
	tasksBoardScope = tasksBoardCmd.Flag("scope", "own, team, assigned or all").Default("all").Enum("own", "team", "assigned", "all")
	tasksBoardTeam  = tasksBoardCmd.Flag("team", "Team ID (scope team)").String()

	tasksAddCmd         = tasksCmd.Command("add", "Create a task")
	tasksAddTitle       = tasksAddCmd.Arg("title", "Task title").Required().String()
	tasksAddDescription = tasksAddCmd.Flag("description", "Description").Short('d').String()
	tasksAddCategory    = tasksAddCmd.Flag("category", "work, personal, shopping or others").String()
	tasksAddPriority    = tasksAddCmd.Flag("priority", "low, medium or high").String()
	tasksAddDue         = tasksAddCmd.Flag("due", "Due date (YYYY-MM-DD)").String()
	tasksAddLabels      = tasksAddCmd.Flag("label", "Label (repeatable)").Strings()
	tasksAddTeam        = tasksAddCmd.Flag("team", "Team ID").String()
	tasksAddAssign      = tasksAddCmd.Flag("assign", "Assignee user ID (repeatable)").Strings()

	tasksMoveCmd     = tasksCmd.Command("move", "Move a task to a board column")
	tasksMoveID      = tasksMoveCmd.Arg("id", "Task ID").Required().String()
	tasksMoveTo      = tasksMoveCmd.Arg("column", "todo, inProgress or completed").Required().Enum("todo", "inProgress", "completed")
	tasksMoveNote    = tasksMoveCmd.Flag("note", "Completion note").String()
	tasksMoveConfirm = tasksMoveCmd.Flag("confirm", "Discard completion details when reopening").Bool()

	tasksRmCmd = tasksCmd.Command("rm", "Delete tasks")
	tasksRmIDs = tasksRmCmd.Arg("ids", "Task IDs").Required().Strings()

	tasksDupCmd = tasksCmd.Command("dup", "Duplicate a task")
	tasksDupID  = tasksDupCmd.Arg("id", "Task ID").Required().String()

	// Team commands
	teamsCmd = app.Command("teams", "Manage teams")

	teamsListCmd = teamsCmd.Command("list", "List your teams and invitations").Default()

	teamsCreateCmd         = teamsCmd.Command("create", "Create a team")
	teamsCreateName        = teamsCreateCmd.Arg("name", "Team name").Required().String()
	teamsCreateDescription = teamsCreateCmd.Flag("description", "Description").Short('d').String()

	teamsInviteCmd    = teamsCmd.Command("invite", "Invite people by email")
	teamsInviteTeam   = teamsInviteCmd.Arg("team", "Team ID").Required().String()
	teamsInviteEmails = teamsInviteCmd.Arg("emails", "Email addresses").Required().Strings()

	teamsAcceptCmd  = teamsCmd.Command("accept", "Accept an invitation")
	teamsAcceptTeam = teamsAcceptCmd.Arg("team", "Team ID").Required().String()

	// Settings commands
	settingsCmd = app.Command("settings", "Show or change your settings")

	settingsGetCmd = settingsCmd.Command("get", "Show settings").Default()

	settingsSetCmd      = settingsCmd.Command("set", "Change settings")
	settingsSetView     = settingsSetCmd.Flag("view", "list or board").Enum("list", "board")
	settingsSetTheme    = settingsSetCmd.Flag("theme", "light, dark or system").Enum("light", "dark", "system")
	settingsSetCategory = settingsSetCmd.Flag("category", "Default task category").String()
	settingsSetEmail    = settingsSetCmd.Flag("email-notifications", "Email notifications").IsSetByUser(&settingsSetEmailSet).Bool()
	settingsSetDesktop  = settingsSetCmd.Flag("desktop-notifications", "Desktop notifications").IsSetByUser(&settingsSetDesktopSet).Bool()

	overviewCmd = app.Command("overview", "Show your dashboard numbers")

	// Local utilities
	tokenCmd    = app.Command("token", "Mint a development token")
	tokenSecret = tokenCmd.Flag("secret", "JWT secret").Envar("TASKDECK_JWT_SECRET").Required().String()
	tokenIssuer = tokenCmd.Flag("issuer", "JWT issuer").Envar("TASKDECK_JWT_ISSUER").Default("taskdeck").String()
	tokenUser   = tokenCmd.Arg("user", "User ID").Required().String()
	tokenEmail  = tokenCmd.Flag("email", "Email").String()
	tokenName   = tokenCmd.Flag("name", "Display name").String()
	tokenTTL    = tokenCmd.Flag("ttl", "Lifetime").Default("24h").Duration()

	vapidKeysCmd = app.Command("vapid-keys", "Generate a VAPID key pair for push notifications")

	seedCmd    = app.Command("seed", "Load sample users, a team and tasks")
	seedSecret = seedCmd.Flag("secret", "JWT secret of the server").Envar("TASKDECK_JWT_SECRET").Required().String()
	seedIssuer = seedCmd.Flag("issuer", "JWT issuer").Envar("TASKDECK_JWT_ISSUER").Default("taskdeck").String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := dispatch(ctx, command); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(*serverURL, client.WithToken(*token))
}

func dispatch(ctx context.Context, command string) error {
	switch command {
	case tasksListCmd.FullCommand():
		return listTasks(ctx, newClient())
	case tasksBoardCmd.FullCommand():
		return showBoard(ctx, newClient())
	case tasksAddCmd.FullCommand():
		return addTask(ctx, newClient())
	case tasksMoveCmd.FullCommand():
		return moveTask(ctx, newClient())
	case tasksRmCmd.FullCommand():
		return removeTasks(ctx, newClient())
	case tasksDupCmd.FullCommand():
		return duplicateTask(ctx, newClient())
	case teamsListCmd.FullCommand():
		return listTeams(ctx, newClient())
	case teamsCreateCmd.FullCommand():
		return createTeam(ctx, newClient())
	case teamsInviteCmd.FullCommand():
		return inviteMembers(ctx, newClient())
	case teamsAcceptCmd.FullCommand():
		return acceptInvitation(ctx, newClient())
	case settingsGetCmd.FullCommand():
		return getSettings(ctx, newClient())
	case settingsSetCmd.FullCommand():
		return setSettings(ctx, newClient())
	case overviewCmd.FullCommand():
		return showOverview(ctx, newClient())
	case tokenCmd.FullCommand():
		return mintToken()
	case vapidKeysCmd.FullCommand():
		return generateVAPIDKeys()
	case seedCmd.FullCommand():
		return seed(ctx, *serverURL, *seedSecret, *seedIssuer, time.Now())
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
