package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"

	"github.com/zuckel/ImperialCommander2/internal/deploy"
	"github.com/zuckel/ImperialCommander2/internal/session"
	"github.com/zuckel/ImperialCommander2/internal/store"
)

// Config holds what every new session shares.
type Config struct {
	Catalog *deploy.Catalog
	Setup   deploy.Setup // defaults for start_session
	Threat  int
	Seed    int64
	Store   store.Store  // nil disables save_session and load_session
	Logger  zerolog.Logger
}

// Server owns the active session (one per stdio process).
type Server struct {
	cfg Config

	mu     sync.Mutex
	active *session.Session
}

func NewServer(cfg Config) *Server {
	return &Server{cfg: cfg}
}

// Active returns the running session, or nil.
func (s *Server) Active() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Server) setActive(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = sess
}

// ToolResponse is the JSON envelope returned by the state-changing tools.
type ToolResponse struct {
	State   *session.StateView   `json:"state,omitempty"`
	Group   *session.GroupView   `json:"group,omitempty"`
	Defeat  *deploy.DefeatResult `json:"defeat,omitempty"`
	Message string               `json:"message,omitempty"`
}

// respondJSON marshals a tool response to a JSON string.
func respondJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}

// splitIDs splits a space- or comma-separated id list.
func splitIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// overrideArgs is the set_override argument object. Unset flags keep the
// default-open policy.
type overrideArgs struct {
	ID                     string `mapstructure:"id"`
	CanReinforce           bool   `mapstructure:"can_reinforce"`
	CanRedeploy            bool   `mapstructure:"can_redeploy"`
	CanBeDefeated          bool   `mapstructure:"can_be_defeated"`
	UseResetOnRedeployment bool   `mapstructure:"use_reset_on_redeployment"`
	NameOverride           string `mapstructure:"name"`
	Modification           string `mapstructure:"modification"`
	ShowModification       bool   `mapstructure:"show_modification"`
	SetTrigger             string `mapstructure:"set_trigger"`
	SetEvent               string `mapstructure:"set_event"`
	DeploymentPoint        string `mapstructure:"deployment_point"`

	CustomName string `mapstructure:"custom_name"`
	CustomTier int    `mapstructure:"custom_tier"`
	CustomCost int    `mapstructure:"custom_cost"`
	CustomSize int    `mapstructure:"custom_size"`
}

// decodeOverride builds an Override from raw tool arguments. Numbers and
// booleans may arrive as strings.
func decodeOverride(raw map[string]any) (*deploy.Override, error) {
	args := overrideArgs{
		CanReinforce:  true,
		CanRedeploy:   true,
		CanBeDefeated: true,
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToScalarHookFunc(),
		Result:           &args,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode override: %w", err)
	}

	id, err := deploy.ParseGroupID(args.ID)
	if err != nil {
		return nil, err
	}
	o := deploy.NewOverride(id)
	o.CanReinforce = args.CanReinforce
	o.CanRedeploy = args.CanRedeploy
	o.CanBeDefeated = args.CanBeDefeated
	o.UseResetOnRedeployment = args.UseResetOnRedeployment
	o.NameOverride = args.NameOverride
	o.Modification = args.Modification
	o.ShowModification = args.ShowModification
	o.SetTrigger = args.SetTrigger
	o.SetEvent = args.SetEvent
	if args.DeploymentPoint != "" {
		o.DeploymentPoint = args.DeploymentPoint
	}
	if args.CustomName != "" {
		if args.CustomSize < 1 || args.CustomTier < 1 || args.CustomTier > 3 {
			return nil, fmt.Errorf("custom group needs a size of at least 1 and a tier of 1 to 3")
		}
		o.IsCustom = true
		o.CustomCard = &deploy.Card{
			Name:      args.CustomName,
			Tier:      args.CustomTier,
			Cost:      args.CustomCost,
			Size:      args.CustomSize,
			Expansion: deploy.ExpansionOther,
		}
	}
	return o, nil
}

// stringToScalarHookFunc converts string arguments to ints and bools.
func stringToScalarHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Kind, to reflect.Kind, data interface{}) (interface{}, error) {
		if from != reflect.String {
			return data, nil
		}
		switch to {
		case reflect.Int:
			return strconv.Atoi(strings.TrimSpace(data.(string)))
		case reflect.Bool:
			return strconv.ParseBool(strings.TrimSpace(data.(string)))
		}
		return data, nil
	}
}
