// Command memo is a small CLI client: it bootstraps the shared document from
// the server (or the local cache when offline), applies one mutation and
// commits it back. Every mutation is durable locally before the process
// exits; the remote push is best-effort.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"shared-memo-pad/internal/client"
	"shared-memo-pad/internal/memo"
)

const usage = `Usage: memo [flags] <command> [args]

Commands:
  list [category]                 list memos, most recently updated first
  add <title> <content> [cat]     add a memo
  edit <id> <title> <content> [cat]  edit a memo (image kept)
  rm <id>                         delete a memo
  categories                      list categories with memo counts
  add-category <name> [color]     add a category
  rm-category <id>                delete a category (memos move to default)
  logout                          forget the remembered password

Flags:
`

func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "Server base URL")
		password = flag.String("password", "", "Shared password (or MEMO_PASSWORD env var)")
		cacheDir = flag.String("cache", defaultCacheDir(), "Local cache directory")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := os.MkdirAll(*cacheDir, 0o700); err != nil {
		log.Fatalf("Failed to create cache directory: %v", err)
	}
	cache, err := client.OpenLocalCache(filepath.Join(*cacheDir, "memo.db"))
	if err != nil {
		log.Fatalf("Failed to open local cache: %v", err)
	}
	defer cache.Close()

	if args[0] == "logout" {
		if err := cache.ForgetCredential(); err != nil {
			log.Fatalf("Failed to forget password: %v", err)
		}
		fmt.Println("Password forgotten.")
		return
	}

	credential := resolveCredential(*password, cache)
	if credential == "" {
		log.Fatal("A password is required. Provide via -password flag or MEMO_PASSWORD env var")
	}

	api := client.NewAPIClient(*server, credential)
	engine := client.NewSyncEngine(api, cache)
	// drain the background save before exiting
	defer engine.Close()

	model := memo.NewModel(engine.Bootstrap(context.Background(), credential))

	mutated, err := run(model, args)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if mutated {
		if err := engine.Commit(credential, model.Document()); err != nil {
			log.Fatalf("Failed to save locally: %v", err)
		}
	}
}

func resolveCredential(flagValue string, cache *client.LocalCache) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("MEMO_PASSWORD"); env != "" {
		return env
	}
	remembered, err := cache.RememberedCredential()
	if err != nil {
		log.Printf("Failed to read remembered password: %v", err)
		return ""
	}
	return remembered
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".memo"
	}
	return filepath.Join(home, ".memo")
}

// run applies one command to the model and reports whether it mutated the
// document.
func run(model *memo.Model, args []string) (bool, error) {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "list":
		category := memo.AllCategories
		if len(rest) > 0 {
			category = rest[0]
		}
		printMemos(model.ListMemos(category))
		return false, nil

	case "add":
		if len(rest) < 2 {
			return false, fmt.Errorf("usage: memo add <title> <content> [category]")
		}
		params := memo.CreateMemoParams{Title: rest[0], Content: rest[1]}
		if len(rest) > 2 {
			params.CategoryID = rest[2]
		}
		m, err := model.CreateMemo(params)
		if err != nil {
			return false, err
		}
		fmt.Printf("Added memo %s\n", m.ID)
		return true, nil

	case "edit":
		if len(rest) < 3 {
			return false, fmt.Errorf("usage: memo edit <id> <title> <content> [category]")
		}
		params := memo.UpdateMemoParams{Title: rest[1], Content: rest[2]}
		if len(rest) > 3 {
			params.CategoryID = rest[3]
		}
		m, err := model.UpdateMemo(rest[0], params)
		if err != nil {
			return false, err
		}
		fmt.Printf("Updated memo %s\n", m.ID)
		return true, nil

	case "rm":
		if len(rest) < 1 {
			return false, fmt.Errorf("usage: memo rm <id>")
		}
		if err := model.DeleteMemo(rest[0]); err != nil {
			return false, err
		}
		fmt.Println("Memo deleted.")
		return true, nil

	case "categories":
		for _, c := range model.Categories() {
			fmt.Printf("%s\t%s\t%d memo(s)\n", c.ID, c.Name, c.Count)
		}
		return false, nil

	case "add-category":
		if len(rest) < 1 {
			return false, fmt.Errorf("usage: memo add-category <name> [color]")
		}
		color := "#4361ee"
		if len(rest) > 1 {
			color = rest[1]
		}
		c, err := model.CreateCategory(rest[0], color)
		if err != nil {
			return false, err
		}
		fmt.Printf("Added category %s\n", c.ID)
		return true, nil

	case "rm-category":
		if len(rest) < 1 {
			return false, fmt.Errorf("usage: memo rm-category <id>")
		}
		if err := model.DeleteCategory(rest[0]); err != nil {
			return false, err
		}
		fmt.Println("Category deleted, memos moved to default.")
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q", cmd)
	}
}

func printMemos(memos []memo.Memo) {
	if len(memos) == 0 {
		fmt.Println("No memos.")
		return
	}
	for _, m := range memos {
		title := m.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s\t%s\t[%s]\t%s\n",
			m.ID, title, m.CategoryID, m.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
}
