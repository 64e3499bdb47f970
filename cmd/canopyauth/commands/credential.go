package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/canopyhq/canopy/pkg/auth"
	"github.com/canopyhq/canopy/pkg/auth/wire"
)

var (
	outFile     string
	inVersion   string
	packVersion string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a credential and write its wire record",
	Long: `Create mints a credential with the active provider, packs it at the
given protocol version, and writes the wire record to --out (or stdout
as hex when no file is given).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cfg, err := setup()
		if err != nil {
			return err
		}
		defer ctx.Fini()

		version, err := parseVersion(packVersion)
		if err != nil {
			return err
		}

		cred, err := ctx.Create(cfg.Auth.Info)
		if err != nil {
			return fmt.Errorf("create credential: %w", err)
		}
		defer ctx.Destroy(cred)

		var buf wire.Buffer
		if err := ctx.Pack(cred, &buf, version); err != nil {
			return fmt.Errorf("pack credential: %w", err)
		}

		if outFile == "" {
			fmt.Printf("%x\n", buf.Bytes())
			return nil
		}
		if err := os.WriteFile(outFile, buf.Bytes(), 0o600); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		fmt.Printf("Wrote %d byte record to %s\n", buf.Len(), outFile)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <record-file>",
	Short: "Unpack and verify a wire record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cfg, err := setup()
		if err != nil {
			return err
		}
		defer ctx.Fini()

		cred, version, err := unpackFile(ctx, args[0])
		if err != nil {
			return err
		}
		defer ctx.Destroy(cred)

		if err := ctx.Verify(cred, cfg.Auth.Info); err != nil {
			code := ctx.Errno(cred)
			return fmt.Errorf("verification failed: %s (%w)", ctx.Errstr(code), err)
		}

		uid, err := ctx.UID(cred, cfg.Auth.Info)
		if err != nil {
			return fmt.Errorf("resolve uid: %w", err)
		}
		gid, err := ctx.GID(cred, cfg.Auth.Info)
		if err != nil {
			return fmt.Errorf("resolve gid: %w", err)
		}
		host, _ := ctx.Host(cred, cfg.Auth.Info)

		fmt.Printf("OK version=%#04x uid=%d gid=%d host=%s\n", version, uid, gid, host)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <record-file>",
	Short: "Unpack a wire record and print the credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := setup()
		if err != nil {
			return err
		}
		defer ctx.Fini()

		cred, _, err := unpackFile(ctx, args[0])
		if err != nil {
			return err
		}
		defer ctx.Destroy(cred)

		return ctx.Print(cred, os.Stdout)
	},
}

// unpackFile reads a wire record and decodes it with the active
// provider at the version given by --version.
func unpackFile(ctx *auth.Context, path string) (auth.Credential, uint16, error) {
	version, err := parseVersion(inVersion)
	if err != nil {
		return nil, 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read record: %w", err)
	}

	cred, err := ctx.Unpack(wire.NewBuffer(data), version)
	if err != nil {
		return nil, 0, fmt.Errorf("unpack record: %w", err)
	}
	return cred, version, nil
}

// parseVersion accepts decimal or 0x-prefixed protocol versions;
// empty means the current ID-tagged version.
func parseVersion(s string) (uint16, error) {
	if s == "" {
		return wire.VersionIDTag, nil
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("parse protocol version %q: %w", s, err)
	}
	return uint16(v), nil
}

func init() {
	createCmd.Flags().StringVar(&outFile, "out", "", "write the wire record to this file")
	createCmd.Flags().StringVar(&packVersion, "version", "", "protocol version to pack at (default: current)")
	verifyCmd.Flags().StringVar(&inVersion, "version", "", "protocol version to unpack at (default: current)")
	inspectCmd.Flags().StringVar(&inVersion, "version", "", "protocol version to unpack at (default: current)")
}
