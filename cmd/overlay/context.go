package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/inamate/overlay3d/internal/config"
	"github.com/inamate/overlay3d/internal/document"
	"github.com/inamate/overlay3d/internal/engine"
	"github.com/inamate/overlay3d/internal/model"
	"github.com/inamate/overlay3d/internal/state"
)

type commandContext struct {
	sceneFlag    *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(sceneFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		sceneFlag:    sceneFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			if _, err := config.ParseLevel(*c.logLevelFlag); err != nil {
				c.configErr = err
				return
			}
			cfg.LogLevel = *c.logLevelFlag
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// setupLogging routes slog to stderr so stdout stays machine readable.
func (c *commandContext) setupLogging(cmd *cobra.Command) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()})))
	return nil
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// scene returns the scene document: the flag's file decoded over the
// configured defaults, or the defaults alone.
func (c *commandContext) scene() (document.Document, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return document.Document{}, err
	}
	base := document.Default(cfg)
	path := ""
	if c.sceneFlag != nil {
		path = strings.TrimSpace(*c.sceneFlag)
	}
	if path == "" {
		if err := base.Validate(); err != nil {
			return document.Document{}, fmt.Errorf("default scene: %w", err)
		}
		return base, nil
	}
	return document.Load(path, base)
}

// newEngine builds an engine for doc with its model loaded and the
// container laid out.
func newEngine(doc document.Document) (*engine.Engine, error) {
	cam, err := doc.NewCamera()
	if err != nil {
		return nil, err
	}
	strategy, err := doc.DragStrategy()
	if err != nil {
		return nil, err
	}

	var m *model.Model
	if doc.Model.Path != "" {
		m, err = model.Load(doc.Model.Path, model.Options{
			MaxBytes: doc.Model.MaxBytes,
			Recenter: doc.Model.Recenter,
		})
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
	} else {
		m = model.Box(doc.Model.BoxSize)
	}

	store := state.NewStore(doc.StateTransform(), doc.AnimationClock())
	e := engine.NewEngine(engine.Options{
		Store:    store,
		Camera:   cam,
		Strategy: strategy,
		Model:    m,
		Size:     doc.Size(),
	})
	return e, nil
}
