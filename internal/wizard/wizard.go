package wizard

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/vecma/uqpost/internal/fetch"
	"github.com/vecma/uqpost/internal/projectconfig"
	"golang.org/x/term"
)

// Answers holds the raw fields collected by the init wizard.
type Answers struct {
	ResultsDir       string
	Samples          string
	Seed             string
	BandwidthDivisor string

	// MachineName is optional. When set, MachineKind selects which of the
	// remaining fields apply.
	MachineName string
	MachineKind string
	AccountURL  string
	Container   string
	Source      string
}

var machineNameRE = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// DefaultAnswers pre-fills the wizard from cfg.
func DefaultAnswers(cfg *projectconfig.ProjectConfig) *Answers {
	return &Answers{
		ResultsDir:       cfg.Paths.Results,
		Samples:          strconv.Itoa(cfg.Propagation.Samples),
		Seed:             strconv.FormatInt(cfg.SeedValue(), 10),
		BandwidthDivisor: strconv.FormatFloat(cfg.Density.BandwidthDivisor, 'g', -1, 64),
		MachineKind:      fetch.KindLocal,
	}
}

// RunInitWizard runs an interactive huh form, starting from a, and returns
// the completed answers.
func RunInitWizard(in io.Reader, out io.Writer, a *Answers) (*Answers, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Results directory").
				Description("Where analysis results are stored").
				Value(&a.ResultsDir).
				Validate(requireNonEmpty("results directory")),
			huh.NewInput().
				Title("Monte Carlo samples").
				Description("Default number of propagation samples").
				Value(&a.Samples).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Random seed").
				Description("Negative for a different sequence on every run").
				Value(&a.Seed).
				Validate(validateSeed),
			huh.NewInput().
				Title("KDE bandwidth divisor").
				Description("Bandwidth is the sample range divided by this value").
				Value(&a.BandwidthDivisor).
				Validate(validatePositiveFloat),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Remote machine name").
				Description("Leave empty to fetch nothing").
				Value(&a.MachineName).
				Validate(validateMachineName),
			huh.NewSelect[string]().
				Title("Machine kind").
				Options(
					huh.NewOption("local directory", fetch.KindLocal),
					huh.NewOption("Azure Blob Storage", fetch.KindAzBlob),
				).
				Value(&a.MachineKind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Storage account URL").
				Placeholder("https://<account>.blob.core.windows.net").
				Value(&a.AccountURL).
				Validate(requireNonEmpty("account URL")),
			huh.NewInput().
				Title("Container").
				Value(&a.Container).
				Validate(requireNonEmpty("container")),
		).WithHideFunc(func() bool { return a.MachineName == "" || a.MachineKind != fetch.KindAzBlob }),
		huh.NewGroup(
			huh.NewInput().
				Title("Source directory").
				Description("Directory holding one subdirectory per campaign").
				Value(&a.Source).
				Validate(requireNonEmpty("source directory")),
		).WithHideFunc(func() bool { return a.MachineName == "" || a.MachineKind != fetch.KindLocal }),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	return a, nil
}

// Apply validates the answers and writes them into cfg.
func (a *Answers) Apply(cfg *projectconfig.ProjectConfig) error {
	if err := requireNonEmpty("results directory")(a.ResultsDir); err != nil {
		return err
	}
	if err := validatePositiveInt(a.Samples); err != nil {
		return err
	}
	if err := validateSeed(a.Seed); err != nil {
		return err
	}
	if err := validatePositiveFloat(a.BandwidthDivisor); err != nil {
		return err
	}
	if err := validateMachineName(a.MachineName); err != nil {
		return err
	}

	samples, _ := strconv.Atoi(strings.TrimSpace(a.Samples))
	seed, _ := strconv.ParseInt(strings.TrimSpace(a.Seed), 10, 64)
	divisor, _ := strconv.ParseFloat(strings.TrimSpace(a.BandwidthDivisor), 64)

	cfg.Paths.Results = strings.TrimSpace(a.ResultsDir)
	cfg.Propagation.Samples = samples
	cfg.Propagation.Seed = &seed
	cfg.Density.BandwidthDivisor = divisor

	name := strings.TrimSpace(a.MachineName)
	if name == "" {
		return nil
	}
	machine := map[string]any{"kind": a.MachineKind}
	switch a.MachineKind {
	case fetch.KindAzBlob:
		machine["account_url"] = strings.TrimSpace(a.AccountURL)
		machine["container"] = strings.TrimSpace(a.Container)
	case fetch.KindLocal:
		machine["source"] = strings.TrimSpace(a.Source)
	default:
		return fmt.Errorf("unknown machine kind %q", a.MachineKind)
	}
	// Reuse the registry's checks so the file never holds a machine fetch rejects.
	if _, err := fetch.New(map[string]map[string]any{name: machine}); err != nil {
		return err
	}
	if cfg.Machines == nil {
		cfg.Machines = map[string]map[string]any{}
	}
	cfg.Machines[name] = machine
	return nil
}

func requireNonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("%q is not a positive integer", s)
	}
	return nil
}

func validateSeed(s string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
		return fmt.Errorf("%q is not an integer seed", s)
	}
	return nil
}

func validatePositiveFloat(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !(v > 0) {
		return fmt.Errorf("%q is not a positive number", s)
	}
	return nil
}

func validateMachineName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if s == fetch.LocalMachine {
		return fmt.Errorf("%q is reserved for campaigns that need no fetch", s)
	}
	if !machineNameRE.MatchString(s) {
		return fmt.Errorf("machine name %q may only contain letters, digits, '.', '_' and '-'", s)
	}
	return nil
}
