// chatcli is a terminal client for the groupchat backend. It drives the
// chatview library over the HTTP adapter: phone login, group selection,
// live messages and the shared notes panel.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/groupchat-backend/internal/chatview"
	"github.com/yungbote/groupchat-backend/internal/chatview/httpstore"
	"github.com/yungbote/groupchat-backend/internal/platform/logger"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "backend base URL")
	phone := flag.String("phone", "", "phone number to log in with")
	flag.Parse()

	log, err := logger.New("development")
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*addr, *phone, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(addr, phone string, log *logger.Logger) error {
	ctx := context.Background()
	stdin := bufio.NewScanner(os.Stdin)

	if phone == "" {
		phone = prompt(stdin, "phone number: ")
	}
	if err := httpstore.RequestCode(ctx, addr, phone); err != nil {
		return fmt.Errorf("request code: %w", err)
	}
	code := prompt(stdin, "verification code: ")
	login, err := httpstore.VerifyCode(ctx, addr, phone, code)
	if err != nil {
		return fmt.Errorf("verify code: %w", err)
	}
	fmt.Printf("logged in as %s\n", login.User.Name)

	client := httpstore.New(addr, login.AccessToken, log)
	window, err := chatview.NewWindow(client.Deps(), login.Session())
	if err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	defer window.Deselect()

	fmt.Println(`commands: groups, create <name>, join <id>, open <id>, msgs, send <text>, reply <id> <text>, del <id>, notes, quit`)
	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			return stdin.Err()
		}
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		switch cmd {
		case "quit", "exit":
			return nil
		case "groups":
			listGroups(ctx, client)
		case "create":
			if rest == "" {
				fmt.Println("usage: create <name>")
				continue
			}
			group, err := client.CreateGroup(ctx, rest, "")
			if err != nil {
				fmt.Println("create:", err)
				continue
			}
			fmt.Printf("created %s (%s)\n", group.Name, group.ID)
		case "join":
			if err := client.JoinGroup(ctx, rest); err != nil {
				fmt.Println("join:", err)
				continue
			}
			fmt.Println("joined")
		case "open":
			openConversation(ctx, window, rest)
		case "msgs":
			printMessages(window)
		case "send":
			sendMessage(ctx, window, rest)
		case "reply":
			replyMessage(ctx, window, rest)
		case "del":
			deleteMessage(ctx, window, rest)
		case "notes":
			printNotes(ctx, window)
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

func prompt(stdin *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !stdin.Scan() {
		return ""
	}
	return strings.TrimSpace(stdin.Text())
}

func listGroups(ctx context.Context, client *httpstore.Client) {
	groups, err := client.ListGroups(ctx)
	if err != nil {
		fmt.Println("groups:", err)
		return
	}
	if len(groups) == 0 {
		fmt.Println("no groups yet")
		return
	}
	for _, g := range groups {
		fmt.Printf("  %s  %s\n", g.ID, g.Name)
	}
}

func openConversation(ctx context.Context, window *chatview.Window, groupID string) {
	if groupID == "" {
		fmt.Println("usage: open <group id>")
		return
	}
	conv, err := window.Select(ctx, groupID)
	if err != nil && conv == nil {
		fmt.Println("open:", err)
		return
	}
	if err != nil {
		fmt.Println("opened, but history failed to load:", err)
	} else {
		fmt.Println("opened", groupID)
	}
	printMessages(window)
}

func current(window *chatview.Window) *chatview.Conversation {
	conv := window.Current()
	if conv == nil {
		fmt.Println("no conversation open; use: open <group id>")
		return nil
	}
	return conv
}

func printMessages(window *chatview.Window) {
	conv := current(window)
	if conv == nil {
		return
	}
	msgs := conv.Messages()
	if len(msgs) == 0 {
		fmt.Println("(no messages)")
		return
	}
	var lastLabel string
	for _, m := range msgs {
		label := chatview.FormatDateLabel(m.CreatedAt)
		if label != lastLabel {
			fmt.Printf("--- %s ---\n", label)
			lastLabel = label
		}
		name := chatview.UnknownAuthor.Name
		if m.Author != nil {
			name = m.Author.Name
		}
		fmt.Printf("[%s] %s  %s: %s\n", chatview.FormatTime(m.CreatedAt), shortID(m.ID), name, m.Content)
		for _, att := range m.Attachments {
			marker := ""
			if att.Uploading {
				marker = " (uploading)"
			}
			fmt.Printf("           %s %s%s\n", att.Kind, att.URL, marker)
		}
	}
	fmt.Printf("(last activity %s)\n", chatview.FormatRecencyLabel(msgs[len(msgs)-1].CreatedAt, time.Now()))
}

func sendMessage(ctx context.Context, window *chatview.Window, text string) {
	conv := current(window)
	if conv == nil {
		return
	}
	conv.SetDraft(text)
	if _, err := conv.Send(ctx, nil); err != nil {
		fmt.Println("send:", err)
	}
}

func replyMessage(ctx context.Context, window *chatview.Window, rest string) {
	conv := current(window)
	if conv == nil {
		return
	}
	target, text, ok := strings.Cut(rest, " ")
	if !ok {
		fmt.Println("usage: reply <message id> <text>")
		return
	}
	if err := conv.Reply(target); err != nil {
		fmt.Println("reply:", err)
		return
	}
	conv.SetDraft(text)
	if _, err := conv.Send(ctx, nil); err != nil {
		fmt.Println("send:", err)
	}
}

func deleteMessage(ctx context.Context, window *chatview.Window, messageID string) {
	conv := current(window)
	if conv == nil {
		return
	}
	if err := conv.Delete(ctx, messageID); err != nil {
		fmt.Println("delete:", err)
	}
}

func printNotes(ctx context.Context, window *chatview.Window) {
	conv := current(window)
	if conv == nil {
		return
	}
	notes, err := conv.LoadNotes(ctx)
	if err != nil {
		fmt.Println("notes:", err)
		return
	}
	if len(notes) == 0 {
		fmt.Println("(no notes)")
		return
	}
	for i, n := range notes {
		fmt.Printf("note %s (#%s)\n", strconv.Itoa(i+1), shortID(n.ID))
		for _, b := range n.Blocks {
			fmt.Printf("  %s\n", b.Text)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
