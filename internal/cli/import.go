package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fenwick-labs/sessionmatch/internal/config"
	"github.com/fenwick-labs/sessionmatch/internal/session"
)

// importFile is the on-disk shape of a session export.
type importFile struct {
	Sessions []importRecord `yaml:"sessions"`
}

// importRecord mirrors session.Session with YAML-friendly field types:
// engagement_time is a duration string ("45s"), start_time an RFC 3339
// timestamp. Absent start_time imports as NULL and the session is later
// excluded from matching as malformed.
type importRecord struct {
	Identifier     string          `yaml:"identifier"`
	Source         string          `yaml:"source"`
	StartTime      time.Time       `yaml:"start_time"`
	EndTime        time.Time       `yaml:"end_time"`
	DeviceCategory string          `yaml:"device_category"`
	Country        string          `yaml:"country"`
	OS             string          `yaml:"os"`
	Browser        string          `yaml:"browser"`
	UserKey        string          `yaml:"user_key"`
	PurchaseCount  int             `yaml:"purchase_count"`
	PurchaseValue  *int64          `yaml:"purchase_value"`
	EngagementTime config.Duration `yaml:"engagement_time"`
}

func (r importRecord) toSession() (session.Session, error) {
	src := session.Source(r.Source)
	if !src.Valid() {
		return session.Session{}, fmt.Errorf("session %s: unknown source %q", r.Identifier, r.Source)
	}
	if r.Identifier == "" {
		return session.Session{}, fmt.Errorf("session with empty identifier (source %s)", r.Source)
	}
	return session.Session{
		Identifier:     r.Identifier,
		Source:         src,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Device:         session.DeviceCategory(r.DeviceCategory),
		Country:        r.Country,
		OS:             r.OS,
		Browser:        r.Browser,
		UserKey:        r.UserKey,
		PurchaseCount:  r.PurchaseCount,
		PurchaseValue:  r.PurchaseValue,
		EngagementTime: r.EngagementTime.Std(),
	}, nil
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import a YAML session export into the warehouse",
		Long: `Import sessions from a YAML export file into the database.

The file carries a top-level "sessions" list; each record names its
source, so one file may mix both collections. Re-importing an existing
(source, identifier) pair overwrites the stored attributes.

Example:
  sessionmatch import sessions.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := loadImportFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read import file", err)
			}

			_, st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.WriteSessions(cmd.Context(), sessions); err != nil {
				return WrapExitError(ExitCommandError, "failed to write sessions", err)
			}

			counts := map[session.Source]int{}
			for _, s := range sessions {
				counts[s.Source]++
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return out.SuccessText(
				fmt.Sprintf("imported %d sessions (source A: %d, source B: %d)\n",
					len(sessions), counts[session.SourceA], counts[session.SourceB]),
				map[string]int{
					"total":    len(sessions),
					"source_a": counts[session.SourceA],
					"source_b": counts[session.SourceB],
				},
			)
		},
	}

	return cmd
}

func loadImportFile(path string) ([]session.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var file importFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	sessions := make([]session.Session, 0, len(file.Sessions))
	for _, r := range file.Sessions {
		s, err := r.toSession()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
