// sendtraffic replays recorded air traffic tracking data from a file out on
// a UDP port, the way RealTraffic broadcasts it, so a traffic display can
// receive canned data on its RealTraffic channel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/twinfan/sendtraffic/internal/config"
	natsmirror "github.com/twinfan/sendtraffic/internal/nats"
	"github.com/twinfan/sendtraffic/internal/ownship"
	"github.com/twinfan/sendtraffic/internal/parser"
	rediscache "github.com/twinfan/sendtraffic/internal/redis"
	"github.com/twinfan/sendtraffic/internal/replay"
	"github.com/twinfan/sendtraffic/internal/stats"
	"github.com/twinfan/sendtraffic/internal/transcript"
	"github.com/twinfan/sendtraffic/internal/types"
	"github.com/twinfan/sendtraffic/internal/udp"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Printf("sendtraffic failed: %v", err)
		os.Exit(1)
	}
}

// options holds the command-line configuration surface.
type options struct {
	aircraftHex  string
	aircraftDec  string
	bufPeriod    int
	historic     int
	loop         bool
	host         string
	port         int
	weatherPort  int
	verbose      bool
	getUserPos   bool
	printUserPos bool
	inFile       string
}

// run contains the main application logic and can be tested
func run(args []string) error {
	args, err := expandArgFiles(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts, err := parseFlags(args, cfg)
	if err != nil {
		return err
	}

	filter, err := replay.ParseAircraftFilter(opts.aircraftHex, opts.aircraftDec)
	if err != nil {
		return err
	}
	if !filter.Empty() && opts.verbose {
		log.Printf("Selected aircraft: %v", filter.IDs())
	}

	// Input: a file argument, or stdin by default. Looping needs a real file.
	in := os.Stdin
	if opts.inFile != "" && opts.inFile != "-" {
		f, err := os.Open(opts.inFile)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	src := replay.NewSource(in)

	sender, err := udp.New(opts.host, opts.port, opts.weatherPort)
	if err != nil {
		return err
	}
	defer sender.Close()

	st := stats.New()
	engine := replay.New(replay.Options{
		Filter:       filter,
		BufferPeriod: opts.bufPeriod,
		Historic:     opts.historic,
		Loop:         opts.loop,
		Verbose:      opts.verbose,
	}, sender, st)

	if opts.getUserPos {
		tracker, err := ownship.Listen(cfg.OwnshipPort, opts.printUserPos)
		if err != nil {
			return err
		}
		defer tracker.Close()
		engine.SetTracker(tracker)
	}

	obs, closeObs, err := buildObserver(cfg)
	if err != nil {
		return err
	}
	if obs != nil {
		defer closeObs()
		engine.SetObserver(obs)
	}

	// Handle operator interrupt once, at the top level. Cancellation also
	// interrupts the engine's pacing sleep.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go st.StartLogging(ctx, time.Minute)

	if err := engine.Run(ctx, src); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("Interrupted, shutting down...")
			log.Printf("Replay statistics: %s", st)
			return nil
		}
		return err
	}

	log.Printf("Replay complete: %s", st)
	return nil
}

func parseFlags(args []string, cfg *config.Config) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("sendtraffic", flag.ContinueOnError)
	fs.StringVar(&opts.aircraftHex, "a", "", "list of aircraft to send, as comma-separated transponder hex ids; others are skipped")
	fs.StringVar(&opts.aircraftDec, "d", "", "same as -a, but decimal ids as used in the CSV file")
	fs.IntVar(&opts.bufPeriod, "b", 0, "buffering period: seconds the first record is pushed into the past so the consumer's buffer fills quickly")
	fs.IntVar(&opts.historic, "historic", 0, "send historic data: reduce the included timestamps by this many seconds")
	fs.BoolVar(&opts.loop, "l", false, "endless loop: restart from the beginning when reaching end of file")
	fs.StringVar(&opts.host, "host", cfg.Host, "UDP target host or ip to send the data to")
	fs.IntVar(&opts.port, "port", cfg.TrafficPort, "UDP port to send traffic data to")
	fs.IntVar(&opts.weatherPort, "weatherPort", cfg.WeatherPort, "UDP port to send weather data to")
	fs.BoolVar(&opts.verbose, "v", false, "verbose output: informs of each sent record")
	fs.BoolVar(&opts.getUserPos, "u", false, "track the user aircraft's position from the GPS broadcast port")
	fs.BoolVar(&opts.printUserPos, "up", false, "print each received user aircraft position (requires -u)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.printUserPos && !opts.getUserPos {
		return nil, errors.New("-up requires -u")
	}
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one input file, got %d arguments", fs.NArg())
	}
	opts.inFile = fs.Arg(0)
	return opts, nil
}

// expandArgFiles supports the @file convention: an argument starting with
// '@' is replaced by the lines of that file, one argument per line.
func expandArgFiles(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if !strings.HasPrefix(a, "@") {
			out = append(out, a)
			continue
		}
		data, err := os.ReadFile(strings.TrimPrefix(a, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read argument file: %w", err)
		}
		for _, ln := range strings.Split(string(data), "\n") {
			ln = strings.TrimSpace(ln)
			if ln != "" {
				out = append(out, ln)
			}
		}
	}
	return out, nil
}

// observer fans emitted records out to the optional collaborators. All of
// them are best-effort: failures are logged and never reach the send path.
type observer struct {
	sessionID  string
	mirror     *natsmirror.Client
	cache      *rediscache.Client
	transcript *transcript.Writer
}

// buildObserver wires up the collaborators enabled in cfg. Returns nil when
// none is enabled.
func buildObserver(cfg *config.Config) (*observer, func(), error) {
	if cfg.NATSURL == "" && cfg.RedisAddr == "" && cfg.TranscriptDir == "" {
		return nil, nil, nil
	}

	obs := &observer{sessionID: uuid.New().String()}
	closeAll := func() {
		if obs.transcript != nil {
			if err := obs.transcript.Stop(); err != nil {
				log.Printf("Warning: Failed to close transcript: %v", err)
			}
		}
		if obs.cache != nil {
			if err := obs.cache.Close(); err != nil {
				log.Printf("Warning: Failed to close Redis client: %v", err)
			}
		}
		if obs.mirror != nil {
			obs.mirror.Close()
		}
	}

	if cfg.NATSURL != "" {
		mirror, err := natsmirror.New(cfg.NATSURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create NATS client: %w", err)
		}
		obs.mirror = mirror
	}
	if cfg.RedisAddr != "" {
		cache, err := rediscache.New(cfg.RedisAddr)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to create Redis client: %w", err)
		}
		obs.cache = cache
	}
	if cfg.TranscriptDir != "" {
		tw := transcript.New(cfg.TranscriptDir)
		if err := tw.Start(); err != nil {
			closeAll()
			return nil, nil, err
		}
		obs.transcript = tw
	}

	log.Printf("Replay session %s", obs.sessionID)
	return obs, closeAll, nil
}

// RecordSent implements replay.Observer.
func (o *observer) RecordSent(kind, payload string, rec *types.TrafficRecord, pass int) {
	now := time.Now().UTC()

	if o.transcript != nil {
		if err := o.transcript.WriteLine(payload); err != nil {
			log.Printf("Warning: Failed to write transcript: %v", err)
		}
	}

	if o.mirror != nil {
		err := o.mirror.PublishReplayedRecord(&types.ReplayedRecord{
			Raw:       payload,
			Kind:      kind,
			SessionID: o.sessionID,
			Pass:      pass,
			SentAt:    now,
		})
		if err != nil {
			log.Printf("Warning: Failed to mirror record: %v", err)
		}
	}

	if o.cache != nil && rec != nil {
		state, err := parser.StateFromTraffic(rec, now)
		if err != nil {
			// No usable key to store the state under.
			return
		}
		state.SessionID = o.sessionID

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := o.cache.StoreAircraftState(ctx, state); err != nil {
			log.Printf("Warning: Failed to cache aircraft state: %v", err)
		}
	}
}
