package command

import (
	"context"
	"strings"
)

type LocalCommandParser struct {
	NextKeywords    []string
	BackKeywords    []string
	SkipKeywords    []string
	CancelKeywords  []string
	ConfirmKeywords []string
}

func NewLocalCommandParser() *LocalCommandParser {
	return &LocalCommandParser{
		NextKeywords:    []string{"next", "n", "continue", "suivant"},
		BackKeywords:    []string{"back", "b", "previous", "prev", "retour"},
		SkipKeywords:    []string{"skip", "s", "passer"},
		CancelKeywords:  []string{"cancel", "quit", "exit", "stop", "annuler"},
		ConfirmKeywords: []string{"confirm", "submit", "publish", "valider"},
	}
}

func (p *LocalCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	normalized := strings.ToLower(strings.TrimSpace(req.Input))
	if normalized == "" {
		return None, nil
	}
	for _, group := range []struct {
		cmd      Command
		keywords []string
	}{
		{Cancel, p.CancelKeywords},
		{Confirm, p.ConfirmKeywords},
		{Back, p.BackKeywords},
		{Skip, p.SkipKeywords},
		{Next, p.NextKeywords},
	} {
		for _, keyword := range group.keywords {
			if normalized == keyword {
				return group.cmd, nil
			}
		}
	}
	return None, nil
}

type FailbackCommandParser struct {
	parsers []Parser
}

func NewFailbackCommandParser(parsers ...Parser) *FailbackCommandParser {
	return &FailbackCommandParser{parsers: parsers}
}

// ParseCommand returns the first answer that is not None. Parser errors move
// on to the next parser.
func (p *FailbackCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	var lastErr error
	for _, parser := range p.parsers {
		cmd, err := parser.ParseCommand(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if cmd != None {
			return cmd, nil
		}
	}
	if lastErr != nil {
		return None, lastErr
	}
	return None, nil
}
