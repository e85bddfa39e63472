package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Catmanpooh/oort-hackathon/internal/config"
	"github.com/Catmanpooh/oort-hackathon/internal/factory"
	"github.com/Catmanpooh/oort-hackathon/internal/logging"
	"github.com/Catmanpooh/oort-hackathon/internal/submission"
	"github.com/Catmanpooh/oort-hackathon/internal/traits"
)

const storageQuestion = "Do you need storage for your nft?"

const usage = `usage: mint <command> [flags]

commands:
  submit   validate a project, upload its assets and register it
  gallery  list the items registered for a wallet
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, surveyPrompter{}))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, p prompter) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch args[0] {
	case "submit":
		return runSubmit(ctx, args[1:], stdout, stderr, p)
	case "gallery":
		return runGallery(ctx, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

type submitFlags struct {
	name     string
	symbol   string
	image    string
	json     string
	tokenURI string
	wallet   string
	store    bool
	storeSet bool
	noInput  bool
	seed     uint64
}

func runSubmit(ctx context.Context, args []string, stdout, stderr io.Writer, p prompter) int {
	var f submitFlags
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.name, "name", "", "project name (3 to 63 characters)")
	fs.StringVar(&f.symbol, "symbol", "", "project symbol (1 to 4 characters)")
	fs.StringVar(&f.image, "image", "", "path to the project image")
	fs.StringVar(&f.json, "json", "", "path to an optional metadata JSON file")
	fs.StringVar(&f.tokenURI, "token-uri", "", "external token URI (used with -store=false)")
	fs.StringVar(&f.wallet, "wallet", "", "wallet address (defaults to WALLET_ADDRESS)")
	fs.BoolVar(&f.store, "store", true, "store the assets with the factory backend")
	fs.BoolVar(&f.noInput, "no-input", false, "never prompt for missing fields")
	fs.Uint64Var(&f.seed, "seed", 0, "trait generator seed (0 picks one from the clock)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "store" {
			f.storeSet = true
		}
	})
	if f.noInput {
		p = noPrompter{}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(stderr, "failed to configure logging: %v\n", err)
		return 1
	}
	logger.SetOutput(stderr)

	form, err := collectForm(p, f)
	if err != nil {
		if errors.Is(err, errAborted) {
			return 130
		}
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	address := f.wallet
	if address == "" {
		address = cfg.WalletAddress
	}
	wallet := submission.StaticWallet{Addr: address, Connected: address != ""}

	seed := f.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	client := factory.NewClient(cfg.FactoryAPIBaseURL, nil)
	orchestrator := submission.NewOrchestrator(wallet, client, client, traits.NewSeededGenerator(seed),
		submission.WithLogger(logger),
		submission.WithContractAddress(cfg.ContractAddress),
		submission.WithNotifier(submission.NotifierFunc(func(o submission.Outcome) {
			fmt.Fprintln(stdout, o.Notice())
		})),
	)

	outcome := orchestrator.Submit(ctx, form)
	if !outcome.Succeeded() {
		fmt.Fprintf(stderr, "submission failed: %v\n", outcome.Err)
		return 1
	}

	fmt.Fprintf(stdout, "trait: %s = %s\n", outcome.Metadata.TraitType.Strand, outcome.Metadata.Value.Strand)
	fmt.Fprintf(stdout, "url:   %s\n", outcome.ObjectURL)
	return 0
}

// collectForm fills the form from flags and prompts for what is missing.
// Field rules are left to submission.Validate.
func collectForm(p prompter, f submitFlags) (submission.Form, error) {
	form := submission.Form{
		ProjectName:     f.name,
		ProjectSymbol:   f.symbol,
		StoreAssets:     f.store,
		ProjectTokenURI: f.tokenURI,
	}

	var err error
	if form.ProjectName == "" {
		if form.ProjectName, err = p.Input("Project name", "3 to 63 characters", nil); err != nil {
			return form, err
		}
	}
	if form.ProjectSymbol == "" {
		if form.ProjectSymbol, err = p.Input("Project symbol", "1 to 4 characters", nil); err != nil {
			return form, err
		}
	}

	if !f.storeSet && form.ProjectTokenURI == "" {
		if form.StoreAssets, err = p.Confirm(storageQuestion, f.store); err != nil {
			return form, err
		}
	}

	if !form.StoreAssets {
		if form.ProjectTokenURI == "" {
			form.ProjectTokenURI, err = p.Input("Token URI", "ipfs://, storj://, http(s):// or a bare host", submission.CheckTokenURI)
			if err != nil {
				return form, err
			}
		}
		return form, nil
	}

	imagePath := f.image
	if imagePath == "" {
		if imagePath, err = p.Input("Path to the project image", "", fileExists); err != nil {
			return form, err
		}
	}
	if imagePath != "" {
		if form.ProjectImage, err = factory.ReadFile(imagePath); err != nil {
			return form, err
		}
	}

	jsonPath := f.json
	if jsonPath == "" {
		if jsonPath, err = p.Input("Path to a metadata JSON file (optional)", "", optionalFile); err != nil {
			return form, err
		}
	}
	if jsonPath != "" {
		if form.ProjectJSON, err = factory.ReadFile(jsonPath); err != nil {
			return form, err
		}
	}

	return form, nil
}

func runGallery(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gallery", flag.ContinueOnError)
	fs.SetOutput(stderr)
	wallet := fs.String("wallet", "", "wallet address (defaults to WALLET_ADDRESS)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	address := *wallet
	if address == "" {
		address = cfg.WalletAddress
	}
	if address == "" {
		fmt.Fprintln(stderr, submission.Outcome{Err: submission.ErrNotConnected}.Notice())
		return 1
	}

	items, err := factory.NewClient(cfg.FactoryAPIBaseURL, nil).ListUserItems(ctx, address)
	if err != nil {
		fmt.Fprintf(stderr, "failed to list items: %v\n", err)
		return 1
	}
	if len(items) == 0 {
		fmt.Fprintln(stdout, "no items registered for", address)
		return 0
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REGISTERED\tMETADATA\tFILE")
	for _, item := range items {
		registered := time.Unix(item.Blocktime, 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", registered, strings.TrimSpace(string(item.Metadata)), item.File)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, "failed to write output: %v\n", err)
		return 1
	}
	return 0
}

func fileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func optionalFile(path string) error {
	if path == "" {
		return nil
	}
	return fileExists(path)
}
