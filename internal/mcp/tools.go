package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/zuckel/ImperialCommander2/internal/deploy"
	"github.com/zuckel/ImperialCommander2/internal/session"
)

// Register adds all deployment tools to the MCP server.
func (s *Server) Register(ms *server.MCPServer) {
	ms.AddTool(startSessionTool(), s.handleStartSession)
	ms.AddTool(buildHandTool(), s.handleBuildHand)
	ms.AddTool(buildManualListTool(), s.handleBuildManualList)
	ms.AddTool(pickDeployableTool(), s.handlePickDeployable)
	ms.AddTool(pickReinforcementTool(), s.handlePickReinforcement)
	ms.AddTool(deployTool(), s.handleDeploy)
	ms.AddTool(deployHeroTool(), s.handleDeployHero)
	ms.AddTool(reinforceTool(), s.handleReinforce)
	ms.AddTool(defeatTool(), s.handleDefeat)
	ms.AddTool(removeHeroTool(), s.handleRemoveHero)
	ms.AddTool(setGroupSizeTool(), s.handleSetGroupSize)
	ms.AddTool(activateTool(), s.handleActivate)
	ms.AddTool(toggleExhaustedTool(), s.handleToggleExhausted)
	ms.AddTool(cycleColorTool(), s.handleCycleColor)
	ms.AddTool(eliteVersionTool(), s.handleEliteVersion)
	ms.AddTool(modifyThreatTool(), s.handleModifyThreat)
	ms.AddTool(endRoundTool(), s.handleEndRound)
	ms.AddTool(setOverrideTool(), s.handleSetOverride)
	ms.AddTool(getOverrideTool(), s.handleGetOverride)
	ms.AddTool(removeOverrideTool(), s.handleRemoveOverride)
	ms.AddTool(getStateTool(), s.handleGetState)
	ms.AddTool(saveSessionTool(), s.handleSaveSession)
	ms.AddTool(loadSessionTool(), s.handleLoadSession)
}

// --- Tool definitions ---

func startSessionTool() mcp.Tool {
	return mcp.NewTool("start_session",
		mcp.WithDescription("Start a new Imperial deployment session with empty pools, replacing any running session. "+
			"Call build_hand next to fill the deployment hand."),
		mcp.WithNumber("threat", mcp.Description("Starting threat budget (default from configuration)")),
		mcp.WithString("faction", mcp.Description("Enemy faction: Imperial or Mercenary")),
		mcp.WithString("expansions", mcp.Description("Comma-separated owned expansions, e.g. 'Core,Twin,Hoth'")),
		mcp.WithString("ignored", mcp.Description("Space-separated group ids that never enter the deployment hand")),
		mcp.WithString("starting", mcp.Description("Space-separated group ids already placed by the mission")),
		mcp.WithString("reserved", mcp.Description("Space-separated group ids reserved by the mission")),
		mcp.WithNumber("seed", mcp.Description("Random seed for reproducible draws (0 for random)")),
		mcp.WithBoolean("adaptive", mcp.Description("Grant fame and refund threat on each defeat")),
	)
}

func buildHandTool() mcp.Tool {
	return mcp.NewTool("build_hand",
		mcp.WithDescription("Build a new deployment hand and manual deployment list for the given threat level. "+
			"Earned villains are injected into the hand or deferred to the manual list."),
		mcp.WithNumber("threat_level", mcp.Required(), mcp.Description("Mission threat level, 1 or higher")),
		mcp.WithString("earned_villains", mcp.Description("Space-separated villain ids earned in the campaign, e.g. 'DG072 DG090'")),
	)
}

func buildManualListTool() mcp.Tool {
	return mcp.NewTool("build_manual_list",
		mcp.WithDescription("Rebuild the manual deployment list from every owned group not in play."),
	)
}

func pickDeployableTool() mcp.Tool {
	return mcp.NewTool("pick_deployable",
		mcp.WithDescription("Pick an affordable group from the deployment hand without deploying it. Read-only apart from the random draw."),
		mcp.WithNumber("threat", mcp.Description("Threat to spend (default: current threat)")),
		mcp.WithBoolean("onslaught", mcp.Description("Apply the onslaught cost discount")),
	)
}

func pickReinforcementTool() mcp.Tool {
	return mcp.NewTool("pick_reinforcement",
		mcp.WithDescription("Pick a deployed group to reinforce without changing it."),
		mcp.WithNumber("threat", mcp.Description("Threat to spend (default: current threat)")),
		mcp.WithBoolean("onslaught", mcp.Description("Apply the onslaught cost discount")),
	)
}

func deployTool() mcp.Tool {
	return mcp.NewTool("deploy",
		mcp.WithDescription("Deploy a group. With an id the group comes from the deployment hand (paying its cost) or the manual list (free). "+
			"Without an id a group is picked from the hand at the current threat."),
		mcp.WithString("id", mcp.Description("Group id, e.g. 'DG001'")),
		mcp.WithBoolean("onslaught", mcp.Description("Apply the onslaught cost discount")),
	)
}

func deployHeroTool() mcp.Tool {
	return mcp.NewTool("deploy_hero",
		mcp.WithDescription("Place a hero or ally on the board."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Hero or ally id")),
	)
}

func removeHeroTool() mcp.Tool {
	return mcp.NewTool("remove_hero",
		mcp.WithDescription("Take a hero or ally off the board."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Hero or ally id")),
	)
}

func setGroupSizeTool() mcp.Tool {
	return mcp.NewTool("set_group_size",
		mcp.WithDescription("Set the number of figures left in a group on the board, e.g. after the rebels defeat some. "+
			"A group below full size can be reinforced."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Group id")),
		mcp.WithNumber("size", mcp.Required(), mcp.Description("Figures remaining (clamped to 0..group size)")),
	)
}

func activateTool() mcp.Tool {
	return mcp.NewTool("activate_group",
		mcp.WithDescription("Mark a group on the board as activated this round and record its rolled instructions."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Group id")),
		mcp.WithString("instruction", mcp.Description("Chosen instruction option")),
		mcp.WithString("bonus_name", mcp.Description("Bonus effect name")),
		mcp.WithString("bonus_text", mcp.Description("Bonus effect text")),
		mcp.WithString("rebel_name", mcp.Description("Targeted hero")),
	)
}

func toggleExhaustedTool() mcp.Tool {
	return mcp.NewTool("toggle_exhausted",
		mcp.WithDescription("Exhaust or ready a group. Readying clears its activation."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Group id")),
		mcp.WithBoolean("exhausted", mcp.Required(), mcp.Description("true to exhaust, false to ready")),
	)
}

func cycleColorTool() mcp.Tool {
	return mcp.NewTool("cycle_color",
		mcp.WithDescription("Advance the colour pip of a group on the board."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Group id")),
	)
}

func eliteVersionTool() mcp.Tool {
	return mcp.NewTool("elite_version",
		mcp.WithDescription("Find the elite counterpart of a regular group, or the regular counterpart of an elite one. Read-only."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Group id")),
	)
}

func reinforceTool() mcp.Tool {
	return mcp.NewTool("reinforce",
		mcp.WithDescription("Add one figure to a deployed group, paying its reinforcement cost. "+
			"Without an id a group is picked at the current threat."),
		mcp.WithString("id", mcp.Description("Group id")),
		mcp.WithBoolean("onslaught", mcp.Description("Apply the onslaught cost discount")),
	)
}

func defeatTool() mcp.Tool {
	return mcp.NewTool("defeat",
		mcp.WithDescription("Resolve the defeat of a deployed enemy group."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Group id")),
	)
}

func modifyThreatTool() mcp.Tool {
	return mcp.NewTool("modify_threat",
		mcp.WithDescription("Add to or subtract from the threat budget. Threat never drops below zero."),
		mcp.WithNumber("delta", mcp.Required(), mcp.Description("Amount to add (negative to spend)")),
		mcp.WithString("reason", mcp.Description("Why the threat changed, for the event log")),
	)
}

func endRoundTool() mcp.Tool {
	return mcp.NewTool("end_round",
		mcp.WithDescription("Ready every deployed group for the next round."),
	)
}

func setOverrideTool() mcp.Tool {
	return mcp.NewTool("set_override",
		mcp.WithDescription("Set the rule override for a group. Unset permissions default to allowed. "+
			"Give custom_name, custom_tier and custom_size to substitute a custom group."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Group id")),
		mcp.WithBoolean("can_reinforce", mcp.Description("Group may be reinforced (default true)")),
		mcp.WithBoolean("can_redeploy", mcp.Description("Group returns to the hand when defeated (default true)")),
		mcp.WithBoolean("can_be_defeated", mcp.Description("Group may be defeated (default true)")),
		mcp.WithBoolean("use_reset_on_redeployment", mcp.Description("Drop this override when the group redeploys")),
		mcp.WithString("name", mcp.Description("Display name replacing the card name")),
		mcp.WithString("modification", mcp.Description("Rules text shown with the group")),
		mcp.WithBoolean("show_modification", mcp.Description("Show the modification text")),
		mcp.WithString("set_trigger", mcp.Description("Trigger fired when the group is defeated")),
		mcp.WithString("set_event", mcp.Description("Event run when the group is defeated")),
		mcp.WithString("deployment_point", mcp.Description("Map deployment point (default 'active')")),
		mcp.WithString("custom_name", mcp.Description("Name of a custom group replacing the card")),
		mcp.WithNumber("custom_tier", mcp.Description("Custom group tier, 1 to 3")),
		mcp.WithNumber("custom_cost", mcp.Description("Custom group deployment cost")),
		mcp.WithNumber("custom_size", mcp.Description("Custom group figure count")),
	)
}

func getOverrideTool() mcp.Tool {
	return mcp.NewTool("get_override",
		mcp.WithDescription("Get the override for a group, if any. Read-only."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Group id")),
	)
}

func removeOverrideTool() mcp.Tool {
	return mcp.NewTool("remove_override",
		mcp.WithDescription("Remove the override for a group, restoring the default rules."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Group id")),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the current pools, threat, overrides and fired triggers. Read-only."),
	)
}

func saveSessionTool() mcp.Tool {
	return mcp.NewTool("save_session",
		mcp.WithDescription("Save the running session to the configured store. Returns the session id."),
	)
}

func loadSessionTool() mcp.Tool {
	return mcp.NewTool("load_session",
		mcp.WithDescription("Restore a saved session, replacing the running session's state."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Id returned by save_session")),
	)
}

// --- Tool handlers ---

func (s *Server) require() (*session.Session, *mcp.CallToolResult) {
	sess := s.Active()
	if sess == nil {
		return nil, mcp.NewToolResultError("No session is running. Use start_session first.")
	}
	return sess, nil
}

func stateResult(st session.StateView) *mcp.CallToolResult {
	return mcp.NewToolResultText(respondJSON(ToolResponse{State: &st}))
}

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	setup := s.cfg.Setup
	if f := request.GetString("faction", ""); f != "" {
		faction := deploy.Faction(f)
		if faction != deploy.FactionImperial && faction != deploy.FactionMercenary {
			return mcp.NewToolResultErrorf("Unknown faction %q. Use Imperial or Mercenary.", f), nil
		}
		setup.Faction = faction
	}
	if e := request.GetString("expansions", ""); e != "" {
		setup.OwnedExpansions = nil
		for _, name := range strings.Split(e, ",") {
			if name = strings.TrimSpace(name); name != "" {
				setup.OwnedExpansions = append(setup.OwnedExpansions, name)
			}
		}
	}
	setup.AdaptiveDifficulty = request.GetBool("adaptive", setup.AdaptiveDifficulty)
	for _, list := range []struct {
		arg string
		dst *[]deploy.GroupID
	}{
		{"ignored", &setup.Ignored},
		{"starting", &setup.Starting},
		{"reserved", &setup.Reserved},
	} {
		raw := request.GetString(list.arg, "")
		if raw == "" {
			continue
		}
		parsed, err := deploy.ParseGroupIDs(splitIDs(raw))
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid %s list: %v", list.arg, err), nil
		}
		*list.dst = parsed
	}

	threat := request.GetInt("threat", s.cfg.Threat)
	if threat < 0 {
		return mcp.NewToolResultError("threat must be >= 0"), nil
	}

	sess, err := session.New(session.Options{
		Catalog: s.cfg.Catalog,
		Setup:   setup,
		Seed:    int64(request.GetInt("seed", int(s.cfg.Seed))),
		Economy: deploy.Economy{Threat: threat},
		Store:   s.cfg.Store,
		Logger:  s.cfg.Logger,
	})
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start session: %v", err), nil
	}
	s.setActive(sess)
	return stateResult(sess.State()), nil
}

func (s *Server) handleBuildHand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	level := request.GetInt("threat_level", 0)
	if level < 1 {
		return mcp.NewToolResultError("threat_level must be >= 1"), nil
	}
	st, err := sess.BuildHand(splitIDs(request.GetString("earned_villains", "")), level)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to build hand: %v", err), nil
	}
	return stateResult(st), nil
}

func (s *Server) handleBuildManualList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	return stateResult(sess.BuildManualList()), nil
}

func (s *Server) handlePickDeployable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	threat := request.GetInt("threat", sess.Threat())
	gv, ok := sess.PickDeployable(threat, request.GetBool("onslaught", false))
	if !ok {
		return mcp.NewToolResultText(respondJSON(ToolResponse{Message: "no affordable group in the deployment hand"})), nil
	}
	return mcp.NewToolResultText(respondJSON(ToolResponse{Group: &gv})), nil
}

func (s *Server) handlePickReinforcement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	threat := request.GetInt("threat", sess.Threat())
	gv, ok := sess.PickReinforcement(threat, request.GetBool("onslaught", false))
	if !ok {
		return mcp.NewToolResultText(respondJSON(ToolResponse{Message: "no deployed group can be reinforced"})), nil
	}
	return mcp.NewToolResultText(respondJSON(ToolResponse{Group: &gv})), nil
}

func (s *Server) handleDeploy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	onslaught := request.GetBool("onslaught", false)

	var gv session.GroupView
	if id := request.GetString("id", ""); id != "" {
		var err error
		gv, err = sess.Deploy(id, onslaught)
		if err != nil {
			return mcp.NewToolResultErrorf("Failed to deploy %s: %v", id, err), nil
		}
	} else {
		var ok bool
		var err error
		gv, ok, err = sess.DeployFuzzy(onslaught)
		if err != nil {
			return mcp.NewToolResultErrorf("Failed to deploy: %v", err), nil
		}
		if !ok {
			st := sess.State()
			return mcp.NewToolResultText(respondJSON(ToolResponse{State: &st, Message: "no affordable group in the deployment hand"})), nil
		}
	}
	st := sess.State()
	return mcp.NewToolResultText(respondJSON(ToolResponse{State: &st, Group: &gv})), nil
}

func (s *Server) handleDeployHero(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetString("id", "")
	gv, err := sess.DeployHero(id)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to deploy %s: %v", id, err), nil
	}
	return mcp.NewToolResultText(respondJSON(ToolResponse{Group: &gv})), nil
}

func (s *Server) handleRemoveHero(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetString("id", "")
	if err := sess.RemoveHero(id); err != nil {
		return mcp.NewToolResultErrorf("Failed to remove %s: %v", id, err), nil
	}
	return stateResult(sess.State()), nil
}

// groupResult answers the tools that change one group on the board.
func groupResult(id string, gv session.GroupView, err error) *mcp.CallToolResult {
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to update %s: %v", id, err)
	}
	return mcp.NewToolResultText(respondJSON(ToolResponse{Group: &gv}))
}

func (s *Server) handleSetGroupSize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetString("id", "")
	gv, err := sess.SetGroupSize(id, request.GetInt("size", 0))
	return groupResult(id, gv, err), nil
}

func (s *Server) handleActivate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetString("id", "")
	gv, err := sess.MarkActivated(id, deploy.Activation{
		InstructionOption: request.GetString("instruction", ""),
		BonusName:         request.GetString("bonus_name", ""),
		BonusText:         request.GetString("bonus_text", ""),
		RebelName:         request.GetString("rebel_name", ""),
	})
	return groupResult(id, gv, err), nil
}

func (s *Server) handleToggleExhausted(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetString("id", "")
	gv, err := sess.ToggleExhausted(id, request.GetBool("exhausted", true))
	return groupResult(id, gv, err), nil
}

func (s *Server) handleCycleColor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetString("id", "")
	gv, err := sess.CycleColor(id)
	return groupResult(id, gv, err), nil
}

func (s *Server) handleEliteVersion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetString("id", "")
	gv, ok, err := sess.Counterpart(id)
	if err != nil {
		return mcp.NewToolResultErrorf("Unknown group %s: %v", id, err), nil
	}
	if !ok {
		return mcp.NewToolResultText(respondJSON(ToolResponse{Message: "no available counterpart for " + id})), nil
	}
	return mcp.NewToolResultText(respondJSON(ToolResponse{Group: &gv})), nil
}

func (s *Server) handleReinforce(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	onslaught := request.GetBool("onslaught", false)

	id := request.GetString("id", "")
	if id == "" {
		gv, ok, err := sess.ReinforceRandom(onslaught)
		if err != nil {
			return mcp.NewToolResultErrorf("Failed to reinforce: %v", err), nil
		}
		st := sess.State()
		if !ok {
			return mcp.NewToolResultText(respondJSON(ToolResponse{State: &st, Message: "no deployed group can be reinforced"})), nil
		}
		return mcp.NewToolResultText(respondJSON(ToolResponse{State: &st, Group: &gv})), nil
	}

	applied, err := sess.Reinforce(id, onslaught)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to reinforce %s: %v", id, err), nil
	}
	st := sess.State()
	resp := ToolResponse{State: &st}
	if !applied {
		resp.Message = id + " cannot be reinforced"
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (s *Server) handleDefeat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetString("id", "")
	res, err := sess.Defeat(id)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to defeat %s: %v", id, err), nil
	}
	st := sess.State()
	return mcp.NewToolResultText(respondJSON(ToolResponse{State: &st, Defeat: &res})), nil
}

func (s *Server) handleModifyThreat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	return stateResult(sess.ModifyThreat(request.GetInt("delta", 0), request.GetString("reason", "manual"))), nil
}

func (s *Server) handleEndRound(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	return stateResult(sess.EndRound()), nil
}

func (s *Server) handleSetOverride(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	o, err := decodeOverride(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid override: %v", err), nil
	}
	if !sess.SetOverride(o) {
		return mcp.NewToolResultError("Override rejected as malformed."), nil
	}
	return stateResult(sess.State()), nil
}

func (s *Server) handleGetOverride(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetString("id", "")
	o, ok, err := sess.Override(id)
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid id: %v", err), nil
	}
	if !ok {
		return mcp.NewToolResultText(respondJSON(ToolResponse{Message: "no override for " + id})), nil
	}
	return mcp.NewToolResultText(respondJSON(o)), nil
}

func (s *Server) handleRemoveOverride(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	id := request.GetString("id", "")
	removed, err := sess.RemoveOverride(id)
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid id: %v", err), nil
	}
	st := sess.State()
	resp := ToolResponse{State: &st}
	if !removed {
		resp.Message = "no override for " + id
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	return stateResult(sess.State()), nil
}

func (s *Server) handleSaveSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := s.require()
	if errResult != nil {
		return errResult, nil
	}
	if err := sess.Save(ctx); err != nil {
		return mcp.NewToolResultErrorf("Failed to save: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(ToolResponse{Message: "saved " + sess.ID()})), nil
}

func (s *Server) handleLoadSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session_id", "")
	sess := s.Active()
	if sess == nil {
		var err error
		sess, err = session.New(session.Options{
			Catalog: s.cfg.Catalog,
			Setup:   s.cfg.Setup,
			Seed:    s.cfg.Seed,
			Store:   s.cfg.Store,
			Logger:  s.cfg.Logger,
		})
		if err != nil {
			return mcp.NewToolResultErrorf("Failed to create session: %v", err), nil
		}
	}
	if err := sess.Load(ctx, id); err != nil {
		return mcp.NewToolResultErrorf("Failed to load %s: %v", id, err), nil
	}
	s.setActive(sess)
	return stateResult(sess.State()), nil
}
