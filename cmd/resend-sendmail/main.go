package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/mikey/resend-relay/internal/config"
	"github.com/mikey/resend-relay/internal/core"
	"github.com/mikey/resend-relay/internal/factory"
	"github.com/mikey/resend-relay/internal/logging"
	"go.uber.org/zap"
)

var (
	// Provider flags
	apiKey  = flag.String("api-key", "", "Resend API key (falls back to config)")
	baseURL = flag.String("base-url", "https://api.resend.com", "Resend API base URL")

	// Sender identity flags
	fromEmail = flag.String("from-email", "", "Default From email address")
	fromName  = flag.String("from-name", "", "Default From display name")
	forceFrom = flag.Bool("force-from", false, "Ignore the message From header and use the configured identity")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	// Initialize provider client
	providerFactory := factory.NewProviderFactory(cfg, logger)
	client := providerFactory.CreateProviderClient()
	if client == nil {
		logger.Fatal("No Resend API key configured")
	}

	mailerCfg := cfg.GetMailer()
	mailer := core.NewMailerService(client, logger, core.MailerConfig{
		OverrideEnabled: true,
		ForceFrom:       mailerCfg.ForceFrom,
		FromEmail:       mailerCfg.FromEmail,
		FromName:        mailerCfg.FromName,
	}, nil)

	// Read email from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email message", zap.Error(err))
	}

	outgoing, err := toOutgoingMessage(msg)
	if err != nil {
		logger.Fatal("Failed to build outgoing message", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	startTime := time.Now()
	result := mailer.TrySend(ctx, outgoing)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Result ===\n")
	fmt.Printf("Status: %s\n", result.Status)
	if result.MessageID != "" {
		fmt.Printf("Message ID: %s\n", result.MessageID)
	}
	if result.Err != nil {
		fmt.Printf("Error: %v\n", result.Err)
	}
	fmt.Printf("Processing time: %v\n", duration)

	if result.Status != core.StatusSent {
		os.Exit(1)
	}
}

// toOutgoingMessage maps a parsed RFC 822 message onto the relay's
// outgoing-message shape.
func toOutgoingMessage(msg *mail.Message) (*core.OutgoingMessage, error) {
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}

	var headers []string
	for key, values := range msg.Header {
		for _, value := range values {
			headers = append(headers, fmt.Sprintf("%s: %s", key, value))
		}
	}

	to := msg.Header.Get("To")
	return &core.OutgoingMessage{
		To:      strings.Split(to, ","),
		Subject: msg.Header.Get("Subject"),
		Body:    string(body),
		Headers: headers,
	}, nil
}

// createConfigFromFlags builds a configuration from the command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("resend.api_key", *apiKey)
	v.Set("resend.base_url", *baseURL)
	v.Set("mailer.from_email", *fromEmail)
	v.Set("mailer.from_name", *fromName)
	v.Set("mailer.force_from", *forceFrom)

	return config.NewFromViper(v)
}
