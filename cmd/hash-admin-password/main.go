package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kigurumiya/reserve-backend/pkg/config"
	"github.com/kigurumiya/reserve-backend/pkg/security"
)

// Mints the Argon2id hash for KIGURUMI_ADMIN_AUTH_PASSWORD_HASH. The
// password is read from stdin so it never lands in shell history.
func main() {
	memory := flag.Int("memory-kb", 65536, "argon2id memory cost in KiB")
	time := flag.Int("time", 3, "argon2id time cost")
	parallelism := flag.Int("parallelism", 2, "argon2id parallelism")
	flag.Parse()

	fmt.Fprint(os.Stderr, "password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "read password: %v\n", err)
		os.Exit(1)
	}
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		fmt.Fprintln(os.Stderr, "password cannot be empty")
		os.Exit(1)
	}

	hash, err := security.HashPassword(password, config.AdminAuthConfig{
		ArgonMemoryKB:    *memory,
		ArgonTime:        *time,
		ArgonParallelism: *parallelism,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
