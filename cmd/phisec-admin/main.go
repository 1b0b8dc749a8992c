// phisec-admin is the operator tool for the PHI security core: it
// generates secrets, checks configuration, and prints the rotation journal.
package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	phisec "github.com/prasunmishra/myhealthvallet-f4sl2v-sub000"
	"github.com/prasunmishra/myhealthvallet-f4sl2v-sub000/internal/keylog"
	"github.com/prasunmishra/myhealthvallet-f4sl2v-sub000/internal/security"
)

const usage = `usage: phisec-admin <command>

commands:
  gen-master-secret    print a fresh base64 master secret (32 bytes)
  gen-signing-secret   print a fresh base64 token signing secret (32 bytes)
  gen-salt             print a fresh base64 key derivation salt (16 bytes)
  check-config         load configuration from the environment and validate it
  keylog               print the key rotation journal (-path required)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// .env is optional; deployed environments set real variables.
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "gen-master-secret", "gen-signing-secret":
		err = genSecret(32)
	case "gen-salt":
		err = genSecret(16)
	case "check-config":
		err = checkConfig()
	case "keylog":
		err = printKeylog(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "phisec-admin:", err)
		os.Exit(1)
	}
}

func genSecret(size int) error {
	secret, err := security.GenerateRandom(size)
	if err != nil {
		return err
	}
	fmt.Println(base64.StdEncoding.EncodeToString(secret))
	return nil
}

func checkConfig() error {
	cfg, err := phisec.LoadConfigFromEnvironment()
	if err != nil {
		return err
	}

	ring, err := cfg.NewKeyRing()
	if err != nil {
		return err
	}
	version, _ := ring.Current()

	fmt.Println("configuration OK")
	fmt.Printf("  current key version:  %d\n", version)
	fmt.Printf("  max key versions:     %d\n", cfg.MaxKeyVersions)
	fmt.Printf("  rotation interval:    %s\n", cfg.RotationInterval)
	fmt.Printf("  access token TTL:     %s\n", cfg.AccessTokenTTL)
	fmt.Printf("  refresh token TTL:    %s\n", cfg.RefreshTokenTTL)
	fmt.Printf("  revocation timeout:   %s\n", cfg.RevocationTimeout)
	return nil
}

func printKeylog(args []string) error {
	fs := flag.NewFlagSet("keylog", flag.ExitOnError)
	path := fs.String("path", "", "rotation journal database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("-path is required")
	}

	journal, err := keylog.Open(*path)
	if err != nil {
		return err
	}
	defer journal.Close()

	rotations, err := journal.Rotations(context.Background())
	if err != nil {
		return err
	}
	if len(rotations) == 0 {
		fmt.Println("no rotations recorded")
		return nil
	}

	for _, r := range rotations {
		if r.EvictedVersion != 0 {
			fmt.Printf("%s  rotated to v%d, evicted v%d\n", r.RotatedAt.Format("2006-01-02 15:04:05"), r.KeyVersion, r.EvictedVersion)
		} else {
			fmt.Printf("%s  rotated to v%d\n", r.RotatedAt.Format("2006-01-02 15:04:05"), r.KeyVersion)
		}
	}
	return nil
}
