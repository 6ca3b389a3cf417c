package oracle

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// RefExistsError is returned by Record when a reference tape would be
// overwritten without force.
type RefExistsError struct {
	Ref string
}

func (e *RefExistsError) Error() string {
	return fmt.Sprintf("reference tape %s already exists", e.Ref)
}

// Record makes the current trial tapes in Dir the new reference tapes. With
// run the subject is executed first. Existing reference tapes are only
// replaced with force. Nothing is written if any reference tape exists and
// force is not set.
func (orc *Oracle) Record(ctx context.Context, run, force bool) ([]Pair, error) {
	log := orc.log()
	if run {
		subj := orc.Subject
		if subj.Dir == "" {
			subj.Dir = orc.Dir
		}
		log.Infow("run subject", "path", subj.Path, "dir", subj.Dir)
		if err := subj.Run(ctx); err != nil {
			return nil, err
		}
	}
	trials, err := Trials(orc.Dir, orc.TrialPrefix)
	if err != nil {
		return nil, err
	}
	pairs := make([]Pair, len(trials))
	var exist []error
	for i, trial := range trials {
		id, _ := TapeID(trial)
		pairs[i] = Pair{Ref: orc.RefPrefix + id, Trial: trial}
		if _, err := os.Stat(orc.path(pairs[i].Ref)); err == nil && !force {
			exist = append(exist, &RefExistsError{Ref: pairs[i].Ref})
		}
	}
	if len(exist) > 0 {
		return nil, errors.Join(exist...)
	}
	for _, p := range pairs {
		data, err := os.ReadFile(orc.path(p.Trial))
		if err != nil {
			return nil, err
		}
		if err = os.WriteFile(orc.path(p.Ref), data, 0666); err != nil {
			return nil, err
		}
		log.Infow("recorded", "ref", p.Ref, "trial", p.Trial)
	}
	return pairs, nil
}
