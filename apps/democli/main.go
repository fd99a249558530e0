// democli wires the chat core against a running Classio server and tails the
// conversation list and unread badge from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/classio/classio/core"
	"github.com/classio/classio/core/chat"
	"github.com/classio/classio/core/user"
	"github.com/classio/classio/services/chatapi"
	logsvc "github.com/classio/classio/services/logger"
)

func main() {
	token := flag.String("token", "", "session token; prompted when omitted")
	flag.Parse()

	std := log.New(os.Stderr, "democli ", log.LstdFlags)
	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		rb := logsvc.NewRollbarLogger(std, core.Conf)
		rb.Enable(!core.Conf.TestMode)
		logger = rb
	}

	if *token == "" {
		fmt.Print("Enter session token:")
		raw, err := term.ReadPassword(syscall.Stdin)
		fmt.Println()
		if err != nil {
			std.Fatal(err)
		}
		*token = string(raw)
	}

	provider := user.NewTokenProvider()
	if err := provider.Login(*token); err != nil {
		std.Fatal(err)
	}
	me, _ := provider.CurrentUser()
	fmt.Printf("signed in as %s (%s)\n", me.Name, me.Role)
	fmt.Printf("may start conversations with: %s\n", reachableRoles(me))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := chatapi.NewClient(core.Conf, *token, logger)
	directory := chat.OpenDirectory(ctx, backend, logger)
	defer directory.Close()
	unread := chat.OpenUnreadCounter(ctx, backend, logger)
	defer unread.Close()

	updates, stop := directory.Subscribe()
	defer stop()
	counts, stopCounts := unread.Subscribe()
	defer stopCounts()

	printConversations(directory, unread)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-updates:
			printConversations(directory, unread)
		case <-counts:
			printConversations(directory, unread)
		case <-sig:
			return
		}
	}
}

// reachableRoles lists the display names of the roles the signed-in user is
// allowed to open a conversation with.
func reachableRoles(me user.User) []string {
	var names []string
	for _, r := range user.Roles {
		if user.CanInitiate(me.Role, r.Value) {
			names = append(names, r.Name)
		}
	}
	return names
}

func printConversations(directory *chat.Directory, unread *chat.UnreadCounter) {
	fmt.Printf("--- conversations (%d unread messages) ---\n", unread.Count())
	for _, c := range directory.Conversations() {
		kind := "direct"
		if c.IsGroup {
			kind = "group"
		}
		marker := " "
		if c.Unread {
			marker = "*"
		}
		fmt.Printf("%s [%s] %s: %s\n", marker, kind, c.Name, c.LastMessage)
	}
}
