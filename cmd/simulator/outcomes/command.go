package outcomes

import (
	"context"
	"math/rand"
	"time"

	fuzz "github.com/google/gofuzz"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/adeyemio/betwallet/internal/wallet"
	"github.com/adeyemio/betwallet/pkg/events"
	"github.com/adeyemio/betwallet/pkg/id"
	"github.com/adeyemio/betwallet/pkg/logger"
)

const (
	fRedis    = "redis"
	fUser     = "user"
	fWorkers  = "workers"
	fRounds   = "rounds"
	fInterval = "interval"
	fMaxWin   = "maxWin"
	fWinRate  = "winRate"
)

const (
	EnvRedis = "REDIS_URL"
	EnvUser  = "SIM_USER_ID"
)

var gameTypes = []string{"slots", "roulette", "blackjack", "sports", "crash"}

type command struct{}

func New() *cli.Command {
	c := new(command)

	return &cli.Command{
		Name:        "run",
		Description: "publish randomized bet_won/bet_lost/balance_update events for one user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: fRedis, Value: "redis://localhost:6379", EnvVars: []string{EnvRedis}},
			&cli.StringFlag{Name: fUser, Required: true, Aliases: []string{"u"}, EnvVars: []string{EnvUser}},
			&cli.IntFlag{Name: fWorkers, Value: 4, Aliases: []string{"w"}},
			&cli.IntFlag{Name: fRounds, Value: 50, Aliases: []string{"n"}, Usage: "outcomes per worker"},
			&cli.DurationFlag{Name: fInterval, Value: 200 * time.Millisecond},
			&cli.Float64Flag{Name: fMaxWin, Value: 500},
			&cli.Float64Flag{Name: fWinRate, Value: 0.4, Usage: "fraction of outcomes that are wins"},
		},
		Action: c.Action,
	}
}

func (c *command) Action(ctx *cli.Context) error {
	bus := events.NewRedisBus(ctx.String(fRedis), "")
	defer bus.Close()

	userID := ctx.String(fUser)
	rounds := ctx.Int(fRounds)
	interval := ctx.Duration(fInterval)
	maxWin := ctx.Float64(fMaxWin)
	winRate := ctx.Float64(fWinRate)

	g, gctx := errgroup.WithContext(ctx.Context)

	for i := 0; i < ctx.Int(fWorkers); i++ {
		worker := i
		g.Go(func() error {
			fuzzer := fuzz.New().RandSource(rand.NewSource(time.Now().UnixNano() + int64(worker)))

			for n := 0; n < rounds; n++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-time.After(interval):
				}

				if err := publishOutcome(gctx, bus, fuzzer, userID, maxWin, winRate); err != nil {
					return errors.Wrapf(err, "worker %d round %d", worker, n)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Simulation finished", logger.Fields{logger.UserIdKey: userID})
	return nil
}

func publishOutcome(ctx context.Context, bus events.Bus, fuzzer *fuzz.Fuzzer, userID string, maxWin, winRate float64) error {
	var seed uint32
	fuzzer.Fuzz(&seed)

	game := gameTypes[int(seed)%len(gameTypes)]
	roll := float64(seed%1000) / 1000

	// occasionally issue a goodwill bonus instead of a game outcome
	if seed%23 == 0 {
		return bus.Publish(ctx, wallet.TopicBalanceUpdate, wallet.BalanceUpdateEvent{
			UserID:       userID,
			Amount:       float64(1 + seed%50),
			Reason:       "goodwill bonus",
			Source:       "game_engine",
			AdjustmentID: id.Generate(),
		})
	}

	outcome := wallet.BetOutcomeEvent{
		UserID:        userID,
		GameType:      game,
		TransactionID: id.Generate(),
	}

	span := uint32(maxWin)
	if span == 0 {
		span = 1
	}

	if roll < winRate {
		outcome.Amount = float64(1+seed%span) + roll
		outcome.Multiplier = 1 + roll*10
		return bus.Publish(ctx, wallet.TopicBetWon, outcome)
	}

	outcome.Amount = float64(1 + seed%100)
	return bus.Publish(ctx, wallet.TopicBetLost, outcome)
}
