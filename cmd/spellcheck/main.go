// Command spellcheck looks words up in a dictionary and prints the closest
// match for each.
//
// The dictionary is either a local word file (-f) or a running speller
// service reached over RPC (-r). Words come from -w or, when none are
// given, from stdin one per line. With -p the words are instead published
// to the word-updates topic so every running speller adds them.
//
// Usage:
//
//	spellcheck -f words.txt -w helo -w wrld
//	cat queries.txt | spellcheck -r localhost:9091 -d 1
//	cat new-words.txt | spellcheck -p -b localhost:9092
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/akamensky/argparse"

	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller/rpcapi"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller/source"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller/updates"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/proto"
)

// matcher is satisfied by both *speller.Service and *rpcapi.Client.
type matcher interface {
	BestMatch(ctx context.Context, word string, distance int) (proto.MatchResponse, error)
}

func main() {
	parser := argparse.NewParser("spellcheck", "find the closest dictionary word for each query")
	file := parser.String("f", "file", &argparse.Options{Help: "word list, one word per line"})
	remote := parser.String("r", "remote", &argparse.Options{Help: "speller RPC address, e.g. localhost:9091"})
	distance := parser.Int("d", "distance", &argparse.Options{Default: -1, Help: "maximum edit distance (0-2); negative for the default"})
	words := parser.StringList("w", "word", &argparse.Options{Help: "word to look up; repeatable"})
	publish := parser.Flag("p", "publish", &argparse.Options{Help: "publish the words to the word-updates topic instead of looking them up"})
	brokers := parser.String("b", "brokers", &argparse.Options{Default: "localhost:9092", Help: "comma-separated Kafka brokers for -p"})
	topic := parser.String("t", "topic", &argparse.Options{Default: "dictionary.words", Help: "word-updates topic for -p"})
	timeout := parser.Int("T", "timeout", &argparse.Options{Default: 10, Help: "seconds to wait for a remote call"})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "log at debug level"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(2)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	slog.SetDefault(logger.New(os.Stderr, level, "text"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queries := *words
	if len(queries) == 0 {
		var err error
		queries, err = source.ReadWords(ctx, os.Stdin)
		if err != nil {
			moan(fmt.Errorf("reading stdin: %w", err))
		}
	}

	if *publish {
		producer := kafka.NewProducer(config.KafkaConfig{Brokers: strings.Split(*brokers, ",")}, *topic)
		defer producer.Close()
		if err := updates.NewPublisher(producer).Publish(ctx, queries, "spellcheck"); err != nil {
			moan(err)
		}
		fmt.Printf("published %d words to %s\n", len(queries), *topic)
		return
	}

	var m matcher
	switch {
	case *remote != "":
		dialCtx, cancel := context.WithTimeout(ctx, time.Duration(*timeout)*time.Second)
		client, err := rpcapi.Dial(dialCtx, *remote)
		cancel()
		if err != nil {
			moan(err)
		}
		defer client.Close()
		m = client
	case *file != "":
		engine := speller.NewEngine(dictionary.DefaultDistance, nil)
		if err := engine.Load(ctx, source.File{Path: *file}); err != nil {
			moan(err)
		}
		m = speller.NewService(engine, speller.Options{})
	default:
		fmt.Fprint(os.Stderr, parser.Usage("one of --file, --remote or --publish is required"))
		os.Exit(2)
	}

	callTimeout := time.Duration(*timeout) * time.Second
	if err := run(ctx, m, queries, *distance, callTimeout, os.Stdout); err != nil {
		moan(err)
	}
}

// run looks up every query and writes one tab-separated line per query:
// the query, then the match or "-" when nothing is within distance.
func run(ctx context.Context, m matcher, queries []string, distance int, timeout time.Duration, out io.Writer) error {
	w := bufio.NewWriter(out)
	defer w.Flush()
	for _, q := range queries {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := m.BestMatch(callCtx, q, distance)
		cancel()
		if err != nil {
			return fmt.Errorf("looking up %q: %w", q, err)
		}
		if !resp.Found {
			fmt.Fprintf(w, "%s\t-\n", q)
			continue
		}
		match := dictionary.Match{Word: resp.Word, Distance: resp.Distance, Count: resp.Count}
		fmt.Fprintf(w, "%s\t%s\n", q, match)
	}
	return nil
}

func moan(err error) {
	fmt.Fprintf(os.Stderr, "spellcheck: %v\n", err)
	os.Exit(1)
}
