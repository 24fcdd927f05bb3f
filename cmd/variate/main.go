package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"variate-server/internal/config"
	"variate-server/pkg/source"
	"variate-server/pkg/variate"
)

var (
	sourceName = flag.String("source", "", "the random source (default from config)")
	seed       = flag.Int64("seed", 0, "seed the source repeatably")
	count      = flag.Int("n", 10, "how many values to draw")
	dist       = flag.String("dist", "normal", "the distribution to draw from (uniform, normal)")
	describe   = flag.Bool("describe", false, "print a summary instead of the values")
	record     = flag.String("record", "", "write every uniform draw to this tape file")
	tapeFile   = flag.String("tape", "", "the tape file replayed by the tape source")
)

func main() {
	flag.Parse()

	if lvl, err := logrus.ParseLevel(config.Instance().Log.Level); err == nil {
		logrus.SetLevel(lvl)
	}

	name := *sourceName
	if name == "" {
		name = config.Instance().Source.Name
	}

	var opts []source.Option
	if *tapeFile != "" {
		opts = append(opts, source.WithTapeFile(*tapeFile))
	} else if tape := config.Instance().Source.Tape; tape != "" {
		opts = append(opts, source.WithTapeFile(tape))
	}

	src, err := source.New(name, opts...)
	if err != nil {
		logrus.WithError(err).Fatal("could not create source")
	}

	var recorder *source.Recorder
	if *record != "" {
		recorder = source.NewRecorder(src)
		src = recorder
	}

	g, err := variate.New(src)
	if err != nil {
		logrus.WithError(err).Fatal("could not create generator")
	}

	if seeded() {
		err = g.InitializeRepeatable(*seed)
	} else if cfgSeed := config.Instance().Source.Seed; cfgSeed != nil {
		err = g.InitializeRepeatable(*cfgSeed)
	} else {
		err = g.InitializeNonRepeatable()
	}

	if err != nil {
		logrus.WithError(err).Fatal("could not initialize generator")
	}

	if *count < 0 {
		logrus.Fatal("n cannot be less than zero")
	}

	values, err := draw(g, *dist, *count)
	if err != nil {
		logrus.WithError(err).Fatal("could not draw values")
	}

	if *describe {
		summary, err := summarize(values, *dist)
		if err != nil {
			logrus.WithError(err).Fatal("could not summarize values")
		}

		summary.write(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
	} else {
		writeValues(os.Stdout, values)
	}

	if recorder != nil {
		if err := writeTape(*record, recorder.Tape()); err != nil {
			logrus.WithError(err).Fatal("could not write tape")
		}

		logrus.WithField("file", *record).Info("tape recorded")
	}
}

// seeded reports whether -seed was passed, 0 is a valid seed
func seeded() bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			found = true
		}
	})

	return found
}

func draw(g *variate.Generator, dist string, n int) ([]float64, error) {
	values := make([]float64, n)

	switch dist {
	case "normal":
		if err := g.NormalBatch(values); err != nil {
			return nil, err
		}
	case "uniform":
		for i := range values {
			v, err := g.Uniform()
			if err != nil {
				return nil, err
			}

			values[i] = v
		}
	default:
		return nil, fmt.Errorf("unknown distribution: %q", dist)
	}

	return values, nil
}

func writeValues(w io.Writer, values []float64) {
	for _, v := range values {
		fmt.Fprintln(w, v)
	}
}

func writeTape(path string, tape *source.Tape) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := tape.Write(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
