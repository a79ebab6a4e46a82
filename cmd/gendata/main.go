// Package main generates a nested users directory payload for local development,
// either printed or served over HTTP as a stand-in upstream.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/chybatronik/goUsersTable/internal/logging"
	"github.com/chybatronik/goUsersTable/internal/models"
)

var (
	firstNames = []string{"Alex", "Maria", "John", "Sarah", "Mike", "Emma", "David", "Lisa"}
	lastNames  = []string{"Smith", "Johnson", "Brown", "Davis", "Wilson", "Miller", "Taylor", "Anderson"}

	geography = []struct {
		country string
		states  []string
	}{
		{"USA", []string{"Texas", "Ohio", "Nevada", "Oregon"}},
		{"Germany", []string{"Bavaria", "Berlin", "Hesse"}},
		{"Canada", []string{"Ontario", "Quebec"}},
	}
)

func main() {
	var (
		users = flag.Int("users", 10000, "Number of users to generate")
		seed  = flag.Uint64("seed", 1, "Random seed")
		serve = flag.String("serve", "", "Serve the payload on this address instead of printing it")
	)
	flag.Parse()

	if *users < 0 {
		log.Fatalf("ERROR: -users must not be negative")
	}

	payload, err := json.Marshal(generate(*users, *seed))
	if err != nil {
		log.Fatalf("FATAL: encoding payload: %v", err)
	}

	if *serve == "" {
		if _, err := os.Stdout.Write(payload); err != nil {
			log.Fatalf("FATAL: writing payload: %v", err)
		}
		return
	}

	logger := logging.New(os.Stderr, logging.LevelInfo, logging.FormatText, "gendata", "")
	if err := serveHTTP(*serve, payload, logger); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// generate builds a deterministic payload of n users spread over the geography table
func generate(n int, seed uint64) []models.Country {
	rng := rand.New(rand.NewPCG(seed, seed))
	epoch := time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)

	countries := make([]models.Country, len(geography))
	for i, g := range geography {
		countries[i].Country = g.country
		countries[i].State = make([]models.State, len(g.states))
		for j, name := range g.states {
			countries[i].State[j] = models.State{Name: name, Users: []models.User{}}
		}
	}

	for id := 1; id <= n; id++ {
		c := rng.IntN(len(countries))
		s := rng.IntN(len(countries[c].State))

		registered := epoch.Add(time.Duration(rng.IntN(3650*24)) * time.Hour)
		user := models.User{
			ID:         strconv.Itoa(id),
			FullName:   firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))],
			Balance:    formatBalance(rng.IntN(400000)),
			IsActive:   rng.IntN(2) == 1,
			Registered: registered.Format("2006-01-02T15:04:05 -07:00"),
		}
		countries[c].State[s].Users = append(countries[c].State[s].Users, user)
	}

	return countries
}

// formatBalance renders cents as "$1,234.56"
func formatBalance(cents int) string {
	whole := strconv.Itoa(cents / 100)
	for i := len(whole) - 3; i > 0; i -= 3 {
		whole = whole[:i] + "," + whole[i:]
	}
	return fmt.Sprintf("$%s.%02d", whole, cents%100)
}

func payloadHandler(payload []byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	})
}

func serveHTTP(addr string, payload []byte, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              addr,
		Handler:           payloadHandler(payload),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Startup("Serving generated payload", "addr", addr, "bytes", len(payload))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
