package analysis

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	platformi18n "github.com/muslimbek77/tanlov-ai/internal/platform/i18n"
)

// AnalyzeParticipants uploads every document with at most limit requests in
// flight. Participants whose name appears in analyzed, or earlier in docs,
// are skipped. The result holds analyzed followed by the new analyses in
// input order. The first failure cancels the uploads still pending.
func (c *Client) AnalyzeParticipants(ctx context.Context, docs []ParticipantDocument, lang platformi18n.Language, limit int, analyzed ...ParticipantAnalysis) ([]ParticipantAnalysis, error) {
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]struct{}, len(analyzed)+len(docs))
	for _, a := range analyzed {
		seen[participantKey(a.ParticipantName)] = struct{}{}
	}
	pending := make([]ParticipantDocument, 0, len(docs))
	for _, doc := range docs {
		key := participantKey(doc.Name)
		if _, ok := seen[key]; ok {
			c.logger.Debug("skip analyzed participant", zap.String("participant", doc.Name))
			continue
		}
		seen[key] = struct{}{}
		pending = append(pending, doc)
	}

	results := make([]ParticipantAnalysis, len(pending))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for i, doc := range pending {
		group.Go(func() error {
			out, err := c.AnalyzeParticipant(groupCtx, doc.Name, doc.Document, lang)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]ParticipantAnalysis, 0, len(analyzed)+len(results))
	out = append(out, analyzed...)
	return append(out, results...), nil
}

func participantKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
