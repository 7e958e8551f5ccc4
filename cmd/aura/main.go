package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	cli "github.com/spf13/pflag"

	"aura/internal/assistant"
	"aura/internal/config"
	"aura/internal/dispatch"
	"aura/internal/ipc"
	"aura/internal/listen"
	"aura/internal/llm"
	"aura/internal/proxy"
	"aura/internal/recognize"
	"aura/internal/reminders"
	"aura/internal/respond"
	"aura/internal/vision"
	"aura/pkg/audioconv"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	cfgFile := cli.StringP("config", "c", "", "Optional YAML config path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	textIn := cli.StringP("text", "t", "", "Process one typed utterance and exit")
	audioIn := cli.StringP("input", "i", "", "Process one recorded utterance from a file and exit")
	mute := cli.Bool("mute", false, "Print responses without speaking them")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	cfg, err := config.Load(*envFile, *cfgFile)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	api, err := newAPIClient(cfg)
	if err != nil {
		log.Error("Failed to build api client", "err", err)
		os.Exit(1)
	}

	stt, sttClose, err := newSTT(cfg, api)
	if err != nil {
		log.Error("Failed to init speech backend", "backend", cfg.STTBackend, "err", err)
		os.Exit(1)
	}
	if sttClose != nil {
		defer sttClose()
	}

	store, err := reminders.Open(cfg.RemindersDB)
	if err != nil {
		log.Error("Failed to open reminders store", "path", cfg.RemindersDB, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	recognizer := recognize.New(
		stt,
		vision.NewDetector(api, cfg.Model),
		recognize.NewLLMClassifier(api, cfg.Model),
		cfg.WakeWord,
	)

	dispatcher := dispatch.New(
		llm.New(api, cfg.Model, cfg.ContextSize, cfg.Timeout()),
		&dispatch.AppLauncher{},
		&dispatch.FileManager{},
		&dispatch.ReminderHandler{Store: store},
		&dispatch.Notifier{Cmd: cfg.NotifyCmd},
	)

	player := respond.NewSpeakerPlayer()
	respOpts := []respond.Option{
		respond.WithLanguage(cfg.Language),
		respond.WithFallback(respond.Espeak{}),
		respond.WithDucker(respond.NewDucker([]string{"aura"}, 20)),
	}
	if *mute {
		respOpts = append(respOpts, respond.Muted())
	}
	responder := respond.New(
		respond.NewSpeech(api, cfg.Voice, cfg.SlowSpeech),
		player,
		respOpts...,
	)

	// One-shot modes run a single cycle without any capture devices.
	if *textIn != "" || *audioIn != "" {
		runOnce(*textIn, *audioIn, recognizer, dispatcher, responder)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sources := listen.NewSources(cfg.Timeout(), 4)

	mic, err := listen.NewMicrophone(cfg.Timeout())
	if err != nil {
		log.Error("Failed to init microphone", "err", err)
		os.Exit(1)
	}
	sources.Add(mic)

	if cfg.CameraURL != "" {
		cam, err := listen.DialCamera(cfg.CameraURL)
		if err != nil {
			log.Error("Failed to connect camera", "url", cfg.CameraURL, "err", err)
			os.Exit(1)
		}
		sources.Add(cam)
	}

	if cfg.PushToTalk {
		sources.Gate()
	}

	ctl, err := ipc.StartServer(cfg.SocketPath, func(msg ipc.ControlMessage) {
		switch msg.Cmd {
		case ipc.CmdTrigger:
			if err := player.Chime(cfg.ChimePath); err != nil {
				log.Debug("chime failed", "err", err)
			}
			sources.Trigger()
		case ipc.CmdStop:
			stop()
		default:
			log.Warn("Unknown control command", "cmd", msg.Cmd)
		}
	})
	if err != nil {
		log.Error("Failed to start control socket", "path", cfg.SocketPath, "err", err)
		os.Exit(1)
	}
	defer ctl.Close()

	sources.Start(ctx)
	defer sources.Close()

	announceOverdue(ctx, store, responder)

	log.Info("Boot up - successful", "wake_word", cfg.WakeWord, "stt", cfg.STTBackend)

	a := assistant.New(sources, recognizer, dispatcher, responder)
	if err := a.Run(ctx); err != nil {
		log.Error("Assistant loop failed", "err", err)
		os.Exit(1)
	}

	log.Info("Shutting down")
}

func newAPIClient(cfg *config.Config) (openai.Client, error) {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}

	if cfg.ProxyAddr != "" {
		httpClient, err := proxy.NewSocksClient(cfg.ProxyAddr, 2*cfg.Timeout())
		if err != nil {
			return openai.Client{}, err
		}
		opts = append(opts, option.WithHTTPClient(httpClient))
		log.Debug("Using socks proxy", "addr", cfg.ProxyAddr)
	}

	return openai.NewClient(opts...), nil
}

func newSTT(cfg *config.Config, api openai.Client) (recognize.SpeechToText, func() error, error) {
	switch cfg.STTBackend {
	case "whisper":
		w, err := recognize.NewWhisperSTT(cfg.WhisperModel, cfg.Language)
		if err != nil {
			return nil, nil, err
		}
		return w, w.Close, nil
	case "google":
		g, err := recognize.NewGoogleSTT(context.Background(), cfg.Language)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	default:
		return recognize.NewOpenAISTT(api, cfg.Language), nil, nil
	}
}

// runOnce feeds exactly one utterance through the cycle.
func runOnce(text, audioPath string, r assistant.Recognizer, d assistant.Dispatcher, resp assistant.Responder) {
	u := assistant.Utterance{Source: assistant.SourceText, Text: text, Time: time.Now()}

	if audioPath != "" {
		pcm, err := audioconv.DecodeFile(audioPath, audioconv.DecodeOptions{})
		if err != nil {
			log.Error("Failed to decode input file", "path", audioPath, "err", err)
			os.Exit(1)
		}
		u = assistant.Utterance{Source: assistant.SourceAudio, PCM: pcm, Time: time.Now()}
	}

	a := assistant.New(once(u), r, d, resp)
	if err := a.Cycle(context.Background()); err != nil {
		log.Debug("cycle ended", "err", err)
	}
}

type onceListener struct {
	u    assistant.Utterance
	used bool
}

func once(u assistant.Utterance) *onceListener { return &onceListener{u: u} }

func (o *onceListener) Capture(context.Context) (assistant.Utterance, error) {
	if o.used {
		return assistant.Utterance{}, assistant.ErrNoInput
	}
	o.used = true
	return o.u, nil
}

// announceOverdue tells the user about reminders that came due while the
// assistant was not running.
func announceOverdue(ctx context.Context, store *reminders.Store, resp assistant.Responder) {
	due, err := store.DueBy(time.Now())
	if err != nil {
		log.Warn("Failed to check overdue reminders", "err", err)
		return
	}

	for _, r := range due {
		resp.Respond(ctx, assistant.ActionResult{
			OK:      true,
			Message: "Reminder: " + r.Text + ".",
		})
		if err := store.MarkDone(r.ID); err != nil {
			log.Warn("Failed to mark reminder done", "id", r.ID, "err", err)
		}
	}
}
