// Package reconcile joins the external status feed against the banking rows.
// The two collections share no primary key, so rows pair up by property name
// via the match package, with deterministic precedence and no duplicates.
package reconcile

import (
	"log/slog"

	"github.com/oakmontcap/lendboard/internal/idgen"
	"github.com/oakmontcap/lendboard/internal/match"
	"github.com/oakmontcap/lendboard/internal/model"
)

// Reconcile produces one joined row per known property. Status rows are
// processed in input order and each consumes at most the first unconsumed
// banking row whose name passes the quick pre-filter; leftover banking rows
// are appended in their input order. Malformed rows are never dropped: a row
// with no usable name gets a synthetic key and a warning.
func Reconcile(status []model.StatusRow, banking []model.BankingRow) []model.JoinedRow {
	consumedBanking := make(map[int]bool, len(banking))
	consumedStatus := make(map[string]bool, len(status))
	emitted := make(map[string]bool, len(status)+len(banking))

	out := make([]model.JoinedRow, 0, len(status)+len(banking))

	emit := func(row model.JoinedRow, statusKey, bankingKey string) {
		// Signature dedup: the same logical row must not be reachable twice.
		sig := statusKey + "\x00" + bankingKey
		if emitted[sig] {
			return
		}
		emitted[sig] = true
		out = append(out, row)
	}

	for i := range status {
		sr := &status[i]
		key := sr.Property
		if key != "" {
			// Duplicate feed rows carrying the same key: first one wins.
			if consumedStatus[key] {
				continue
			}
			consumedStatus[key] = true
		}

		matched := -1
		for j := range banking {
			if consumedBanking[j] {
				continue
			}
			if match.QuickMatch(sr.Property, banking[j].ProjectName) {
				matched = j
				break
			}
		}

		if matched >= 0 {
			br := &banking[matched]
			consumedBanking[matched] = true
			emit(mergeRows(sr, br), sr.Property, br.ProjectName)
			continue
		}

		row := statusOnlyRow(sr)
		emit(row, row.Key.Value, "")
	}

	for j := range banking {
		if consumedBanking[j] {
			continue
		}
		row := bankingOnlyRow(&banking[j])
		emit(row, "", row.Key.Value)
	}

	return out
}

// mergeRows merges a matched pair. Banking fields win on key collision; the
// display name prefers the feed's human label while the key stays on the
// backend's canonical project name.
func mergeRows(sr *model.StatusRow, br *model.BankingRow) model.JoinedRow {
	fields := make(map[string]string, len(sr.Fields)+16)
	for k, v := range sr.Fields {
		fields[k] = v
	}
	for k, v := range br.Flatten() {
		if v != "" {
			fields[k] = v
		}
	}

	display := sr.Property
	if display == "" {
		display = br.ProjectName
	}
	fields["ProjectName"] = display

	return model.JoinedRow{
		Key:          model.RealKey(br.ProjectName),
		PropertyName: display,
		Stage:        br.Stage,
		Status:       sr,
		Banking:      br,
		Fields:       fields,
	}
}

func statusOnlyRow(sr *model.StatusRow) model.JoinedRow {
	fields := make(map[string]string, len(sr.Fields)+1)
	for k, v := range sr.Fields {
		fields[k] = v
	}

	key := model.RealKey(sr.Property)
	if sr.Property == "" {
		slog.Warn("status row has no property name, assigning synthetic key")
		key = model.SyntheticKey(idgen.MustSynthetic())
	}
	fields["ProjectName"] = key.Value

	return model.JoinedRow{
		Key:          key,
		PropertyName: key.Value,
		Status:       sr,
		Fields:       fields,
	}
}

func bankingOnlyRow(br *model.BankingRow) model.JoinedRow {
	key := model.RealKey(br.ProjectName)
	if br.ProjectName == "" {
		slog.Warn("banking row has no project name, assigning synthetic key",
			"project_id", br.ProjectID)
		key = model.SyntheticKey(idgen.MustSynthetic())
	}

	fields := br.Flatten()
	fields["ProjectName"] = key.Value

	return model.JoinedRow{
		Key:          key,
		PropertyName: key.Value,
		Stage:        br.Stage,
		Banking:      br,
		Fields:       fields,
	}
}
