package main

import (
	"flag"
	"os"
	"time"

	"github.com/jibble-go/ircengine/internal/config"
	"github.com/jibble-go/ircengine/internal/irc"
	"github.com/jibble-go/ircengine/internal/output"
	"github.com/jibble-go/ircengine/internal/shutdown"
)

func main() {
	configPath := flag.String("config", "config/demo.toml", "path to the demo TOML config")
	flag.Parse()

	logger := output.NewColorLogger()
	logger.Info("ircengine demo - starting...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warning("Failed to load %s: %v", *configPath, err)
		logger.Info("Falling back to built-in defaults")
		cfg = config.DefaultConfig()
	}

	out, err := output.NewOutput("data/error.log")
	if err != nil {
		logger.Error("Failed to initialize output: %v", err)
		os.Exit(1)
	}

	identity := irc.NewIdentity(cfg.Nick, cfg.UserName, cfg.RealName)
	identity.SetVersion(cfg.Version)
	identity.SetFinger(cfg.Finger)
	identity.SetVerbose(cfg.Verbose)

	conn := irc.NewConnection(identity, out)
	if cfg.ChannelPrefixes != "" {
		conn.ChannelPrefixes = cfg.ChannelPrefixes
	}
	conn.Handlers().Register(demoHandler{})

	shutdownHandler := shutdown.NewHandler(logger, 5*time.Second)
	shutdownHandler.RegisterConnection(conn, "demo collaborator shutting down")
	go shutdownHandler.WaitForShutdown()

	settings := irc.ConnectionSettings{
		Host:      cfg.Server,
		Port:      cfg.Port,
		Password:  cfg.Password,
		TLS:       cfg.SSL,
		VerifyTLS: cfg.VerifySSL,
	}

	if err := conn.Connect(settings); err != nil {
		logger.Error("Failed to connect: %v", err)
		os.Exit(1)
	}
	logger.Success("Connected and registered as %s", conn.Identity.CurrentNick())

	for _, channel := range cfg.Channels {
		if err := conn.Join(channel); err != nil {
			logger.Warning("Failed to join %s: %v", channel, err)
		}
	}

	<-shutdownHandler.Done()
	logger.Success("ircengine demo has shut down. Goodbye!")
}

// demoHandler logs channel and private messages, joins, parts and
// disconnects, standing in for the bot-logic a real collaborator would
// register instead.
type demoHandler struct{}

func (demoHandler) Capabilities() irc.Capability { return irc.Full }

func (demoHandler) HandleEvent(conn *irc.Connection, event irc.Event) {
	logger := conn.Out.Logger
	switch e := event.(type) {
	case irc.MessageEvent:
		logger.ChannelMessage(e.Channel, e.Sender, e.Text)
	case irc.PrivateMessageEvent:
		logger.PrivateMessage(e.Sender, e.Text)
	case irc.JoinEvent:
		logger.Info("%s joined %s", e.Nick, e.Channel)
	case irc.PartEvent:
		logger.Info("%s left %s (%s)", e.Nick, e.Channel, e.Reason)
	case irc.DisconnectEvent:
		logger.Warning("disconnected from server")
	}
}
