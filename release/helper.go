package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmame/txntools/termstyle"
)

// Helper binds the default release steps to a project checkout.
type Helper struct {
	Config Config
	Root   string
	Prompt Prompter
	Runner Runner
	Out    termstyle.Printer
	Now    func() time.Time
}

func (h *Helper) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(h.Root, rel)
}

func (h *Helper) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// CheckProjectRoot verifies that Root looks like the firmware project.
func (h *Helper) CheckProjectRoot() error {
	if _, err := os.Stat(h.path(h.Config.VersionHeader)); err != nil {
		return fmt.Errorf("%s not found, run from the project root directory: %w", h.Config.VersionHeader, err)
	}
	return nil
}

// Execute runs the default steps and prints the summary on success.
func (h *Helper) Execute(ctx context.Context) (*State, error) {
	h.Out.Println(termstyle.Header, "ESP32 Music Player - OTA Release Helper")
	if err := h.CheckProjectRoot(); err != nil {
		return nil, err
	}

	st := &State{}
	err := Run(ctx, h.Steps(), st, func(n int, s Step) {
		fmt.Fprintln(h.Out.W)
		h.Out.StepLine(n, s.Name)
	})
	if err != nil {
		return st, err
	}
	h.printSummary(st)
	return st, nil
}

// Steps returns the release steps in execution order.
func (h *Helper) Steps() []Step {
	return []Step{
		{Name: "Checking current version", Run: h.checkVersion},
		{Name: "Enter new version number", Run: h.chooseVersion},
		{Name: "Enter release notes", Run: h.releaseNotes},
		{Name: "Updating firmware version in code", Run: h.updateHeader},
		{Name: "Building firmware", Run: h.build},
		{Name: "Verifying build files", Run: h.verifyBuild},
		{Name: "Updating version metadata", Run: h.writeMetadata},
		{Name: "Preparing release files", Run: h.stageFiles},
		{Name: "Git operations", Run: h.gitOperations},
		{Name: "Create GitHub Release", Run: h.githubInstructions},
	}
}

func (h *Helper) checkVersion(_ context.Context, st *State) (Outcome, error) {
	v, err := ReadHeaderVersion(h.path(h.Config.VersionHeader))
	if err != nil {
		return Abort, err
	}
	st.CurrentVersion = v
	fmt.Fprintf(h.Out.W, "   Current version: %s\n", h.Out.Sprint(termstyle.Emphasis, v))

	prev, err := ReadVersionFile(h.path(h.Config.VersionFile))
	switch {
	case err == nil:
		st.Previous = &prev
		fmt.Fprintf(h.Out.W, "   Last published:  %s (%s)\n", prev.Version, prev.ReleaseDate)
	case errors.Is(err, os.ErrNotExist):
	default:
		slog.Warn("ignoring unreadable version file", "path", h.Config.VersionFile, "error", err)
	}
	return Proceed, nil
}

func (h *Helper) chooseVersion(_ context.Context, st *State) (Outcome, error) {
	v, err := h.Prompt.Ask("New version (semantic: X.Y.Z)", st.CurrentVersion)
	if err != nil {
		return Abort, err
	}
	if !ValidVersion(v) {
		h.Out.Println(termstyle.Error, "Invalid version format! Use semantic versioning (e.g., 1.0.1)")
		return Retry, nil
	}
	if v == st.CurrentVersion {
		ok, err := h.Prompt.Confirm(fmt.Sprintf("Version is the same as current (%s). Continue anyway?", v))
		if err != nil {
			return Abort, err
		}
		if !ok {
			return Retry, nil
		}
	}
	st.NewVersion = v
	fmt.Fprintf(h.Out.W, "   New version: %s\n", h.Out.Sprint(termstyle.Success, v))
	return Proceed, nil
}

func (h *Helper) releaseNotes(_ context.Context, st *State) (Outcome, error) {
	notes, err := h.Prompt.Ask("Release notes", h.Config.DefaultNotes)
	if err != nil {
		return Abort, err
	}
	st.ReleaseNotes = notes
	return Proceed, nil
}

func (h *Helper) updateHeader(_ context.Context, st *State) (Outcome, error) {
	ok, err := h.Prompt.Confirm(fmt.Sprintf("Update %s to version %s?", h.Config.VersionHeader, st.NewVersion))
	if err != nil {
		return Abort, err
	}
	if ok {
		if err := WriteHeaderVersion(h.path(h.Config.VersionHeader), st.NewVersion); err != nil {
			return Abort, err
		}
		st.HeaderUpdated = true
		h.Out.Printf(termstyle.Success, "Updated %s", h.Config.VersionHeader)
		h.Out.Println(termstyle.Warning, "Firmware must be rebuilt to include the new version!")
		return Proceed, nil
	}

	h.Out.Println(termstyle.Error, "Skipped version update - the binary will report the OLD version!")
	return h.continueAnyway("Continue anyway?")
}

func (h *Helper) build(ctx context.Context, st *State) (Outcome, error) {
	command := strings.Join(h.Config.BuildCommand, " ")
	ok, err := h.Prompt.Confirm(fmt.Sprintf("Build firmware with '%s'?", command))
	if err != nil {
		return Abort, err
	}
	if !ok {
		h.Out.Println(termstyle.Warning, "Skipped build - make sure the firmware was built with the new version")
		return Proceed, nil
	}

	fmt.Fprintln(h.Out.W, "   Building... (this may take a few minutes)")
	out, err := h.Runner.Run(ctx, h.Config.BuildCommand[0], h.Config.BuildCommand[1:]...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Abort, ctxErr
	}
	switch {
	case err == nil:
		st.Built = true
		h.Out.Println(termstyle.Success, "Build completed successfully")
		return Proceed, nil
	case errors.Is(err, ErrToolNotFound):
		h.Out.Printf(termstyle.Error, "'%s' not found - is the build environment set up?", h.Config.BuildCommand[0])
		return h.continueAnyway("Continue anyway (assuming the build is already done)?")
	default:
		h.Out.Println(termstyle.Error, "Build failed!")
		if len(out) > 0 {
			fmt.Fprintln(h.Out.W, strings.TrimRight(string(out), "\n"))
		}
		slog.Error("build failed", "command", command, "error", err)
		return h.continueAnyway("Continue anyway?")
	}
}

func (h *Helper) verifyBuild(_ context.Context, _ *State) (Outcome, error) {
	firmware := h.Config.FirmwarePath()
	size, err := FileSize(h.path(firmware))
	if err != nil {
		h.Out.Printf(termstyle.Error, "Build files not found: %s", firmware)
		return h.continueAnyway("Continue anyway?")
	}
	h.Out.Printf(termstyle.Success, "Found firmware binary: %s (%s)", firmware, size)
	return Proceed, nil
}

func (h *Helper) writeMetadata(_ context.Context, st *State) (Outcome, error) {
	m := NewMetadata(st.NewVersion, st.ReleaseNotes, h.now())
	if err := WriteVersionFile(h.path(h.Config.VersionFile), m); err != nil {
		return Abort, err
	}
	st.Metadata = m
	h.Out.Printf(termstyle.Success, "Updated %s", h.Config.VersionFile)
	return Proceed, nil
}

func (h *Helper) stageFiles(_ context.Context, st *State) (Outcome, error) {
	dir, err := h.Prompt.Ask("Release directory", h.Config.ReleaseDir)
	if err != nil {
		return Abort, err
	}
	staged, err := StageRelease(h.path(h.Config.FirmwarePath()), h.path(h.Config.VersionFile), h.path(dir))
	if err != nil {
		return Abort, err
	}
	st.Staged = staged
	h.Out.Printf(termstyle.Success, "Release files prepared in: %s", staged.Dir)
	for _, f := range []string{staged.Firmware, staged.Version} {
		size, err := FileSize(f)
		if err != nil {
			return Abort, err
		}
		fmt.Fprintf(h.Out.W, "   - %s (%s)\n", filepath.Base(f), size)
	}
	return Proceed, nil
}

func (h *Helper) gitOperations(ctx context.Context, st *State) (Outcome, error) {
	tag := "v" + st.NewVersion

	ok, err := h.Prompt.Confirm("Create git commit for version update?")
	if err != nil {
		return Abort, err
	}
	if ok {
		st.Committed = h.git(ctx, "Git commit created",
			[]string{"add", h.Config.VersionHeader, h.Config.VersionFile},
			[]string{"commit", "-m", "Release version " + st.NewVersion})
	}

	ok, err = h.Prompt.Confirm(fmt.Sprintf("Create git tag %s?", tag))
	if err != nil {
		return Abort, err
	}
	if ok {
		st.Tagged = h.git(ctx, "Git tag "+tag+" created",
			[]string{"tag", "-a", tag, "-m", "Release " + st.NewVersion})
	}

	if st.Committed || st.Tagged {
		ok, err = h.Prompt.Confirm("Push to GitHub?")
		if err != nil {
			return Abort, err
		}
		if ok {
			st.Pushed = h.git(ctx, "Pushed to GitHub", []string{"push"}, []string{"push", "--tags"})
		}
	}
	if err := ctx.Err(); err != nil {
		return Abort, err
	}
	return Proceed, nil
}

// git runs each invocation in order and reports the first failure. Failures
// are shown to the operator but do not stop the release.
func (h *Helper) git(ctx context.Context, success string, invocations ...[]string) bool {
	for _, args := range invocations {
		out, err := h.Runner.Run(ctx, "git", args...)
		if err != nil {
			if errors.Is(err, ErrToolNotFound) {
				h.Out.Println(termstyle.Error, "Git not found - skipping git operations")
			} else {
				h.Out.Printf(termstyle.Error, "Git operation failed: %v", err)
				if len(out) > 0 {
					fmt.Fprintln(h.Out.W, strings.TrimRight(string(out), "\n"))
				}
			}
			slog.Warn("git failed", "args", strings.Join(args, " "), "error", err)
			return false
		}
	}
	h.Out.Println(termstyle.Success, success)
	return true
}

func (h *Helper) githubInstructions(_ context.Context, st *State) (Outcome, error) {
	tag := "v" + st.NewVersion
	fmt.Fprintln(h.Out.W, h.Out.Sprint(termstyle.Info, "Manual steps to complete the release:"))
	fmt.Fprintf(h.Out.W, "   1. Open %s/releases\n", strings.TrimRight(h.Config.RepositoryURL, "/"))
	fmt.Fprintln(h.Out.W, "   2. Click 'Draft a new release'")
	fmt.Fprintf(h.Out.W, "   3. Choose tag: %s\n", tag)
	fmt.Fprintf(h.Out.W, "   4. Release title: Release %s\n", st.NewVersion)
	fmt.Fprintf(h.Out.W, "   5. Description: %s\n", st.ReleaseNotes)
	fmt.Fprintf(h.Out.W, "   6. Upload %s and %s from %s\n", ReleaseFirmwareName, ReleaseVersionName, st.Staged.Dir)
	fmt.Fprintln(h.Out.W, "   7. Publish the release")
	return Proceed, nil
}

func (h *Helper) printSummary(st *State) {
	h.Out.Println(termstyle.Header, "Release Summary")
	fmt.Fprintf(h.Out.W, "Version:       %s\n", h.Out.Sprint(termstyle.Emphasis, st.NewVersion))
	fmt.Fprintf(h.Out.W, "Release date:  %s\n", st.Metadata.ReleaseDate)
	fmt.Fprintf(h.Out.W, "Release notes: %s\n", st.ReleaseNotes)
	fmt.Fprintf(h.Out.W, "Files:         %s\n", st.Staged.Dir)
	fmt.Fprintln(h.Out.W)
	h.Out.Println(termstyle.Success, "Release preparation complete!")
}

func (h *Helper) continueAnyway(prompt string) (Outcome, error) {
	ok, err := h.Prompt.Confirm(prompt)
	if err != nil {
		return Abort, err
	}
	if !ok {
		return Abort, nil
	}
	return Proceed, nil
}
