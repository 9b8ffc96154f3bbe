// Package slash generates slash-command files for coding agents, one per
// context-store alias, so /mx-tk style commands surface stored documents
// inside the agent conversation.
package slash

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/mx/pkg/logger"
	"github.com/jingkaihe/mx/pkg/store"
)

// Target selects which agent's command layout to generate into.
type Target string

const (
	TargetClaude Target = "claude"
	TargetCodex  Target = "codex"
	TargetCursor Target = "cursor"
)

// targetDirs maps each agent to the directory its slash commands load from,
// relative to the project root.
var targetDirs = map[Target]string{
	TargetClaude: filepath.Join(".claude", "commands"),
	TargetCodex:  filepath.Join(".codex", "prompts"),
	TargetCursor: filepath.Join(".cursor", "commands"),
}

// Targets lists the supported target names in stable order.
func Targets() []string {
	return []string{string(TargetClaude), string(TargetCodex), string(TargetCursor)}
}

// ParseTarget validates a user-supplied target name.
func ParseTarget(s string) (Target, error) {
	target := Target(strings.ToLower(s))
	if _, ok := targetDirs[target]; !ok {
		return "", errors.Errorf("unknown target %q (expected %s)", s, strings.Join(Targets(), ", "))
	}
	return target, nil
}

// Request configures a generation sweep.
type Request struct {
	Target Target
	// Force overwrites command files that already exist.
	Force bool
}

// Outcome reports what a sweep did, file names relative to Dir.
type Outcome struct {
	Target  Target   `json:"target"`
	Dir     string   `json:"dir"`
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

//go:embed templates/*
var templateFS embed.FS

const commandTemplate = "templates/command.md.tmpl"

type frontMatter struct {
	Description string `yaml:"description"`
}

type commandData struct {
	FrontMatter string
	Key         string
	Path        string
}

// descriptions gives the built-in aliases a human summary; other aliases
// fall back to a generic line naming their target path.
var descriptions = map[string]string{
	"tk":  "Show the project tasks document",
	"rq":  "Show the project requirements document",
	"nt":  "Show the project notes document",
	"ds":  "Show the project design document",
	"bg":  "Show the project bugs document",
	"id":  "Show the project ideas document",
	"pdt": "Show the pending tasks document",
}

// Generate writes one command file per alias into the target's command
// directory under the project root. Existing files are skipped unless
// req.Force; per-file failures do not abort the sweep and are returned
// together after it.
func Generate(ctx context.Context, resolver *store.Resolver, req Request) (*Outcome, error) {
	dir, ok := targetDirs[req.Target]
	if !ok {
		return nil, errors.Errorf("unknown target %q", req.Target)
	}

	root, err := store.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	commandsDir := filepath.Join(root, dir)
	if err := os.MkdirAll(commandsDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", commandsDir)
	}

	tmplContent, err := templateFS.ReadFile(commandTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read command template")
	}
	tmpl, err := template.New("command").Parse(string(tmplContent))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse command template")
	}

	outcome := &Outcome{Target: req.Target, Dir: commandsDir}
	var errs *multierror.Error

	for _, key := range sortedKeys(resolver.Keys()) {
		name := "mx-" + key + ".md"
		fullPath := filepath.Join(commandsDir, name)

		if !req.Force {
			if _, err := os.Stat(fullPath); err == nil {
				outcome.Skipped = append(outcome.Skipped, name)
				continue
			}
		}

		content, err := renderCommand(tmpl, key, resolver.Resolve(key))
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := os.WriteFile(fullPath, content, 0o644); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "failed to write %s", name))
			continue
		}
		outcome.Created = append(outcome.Created, name)
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"target":  req.Target,
		"dir":     commandsDir,
		"created": len(outcome.Created),
		"skipped": len(outcome.Skipped),
	}).Debug("Generated slash commands")

	return outcome, errs.ErrorOrNil()
}

func renderCommand(tmpl *template.Template, key, target string) ([]byte, error) {
	fm, err := yaml.Marshal(frontMatter{Description: descriptionFor(key, target)})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to render front matter for %s", key)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, commandData{
		FrontMatter: string(fm),
		Key:         key,
		Path:        target,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to render command for %s", key)
	}
	return buf.Bytes(), nil
}

func descriptionFor(key, target string) string {
	if desc, ok := descriptions[key]; ok {
		return desc
	}
	return fmt.Sprintf("Show the %s document from the context store", target)
}

func sortedKeys(aliases map[string]string) []string {
	keys := make([]string, 0, len(aliases))
	for key := range aliases {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
