package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/teller/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete runs the shell completion for the atm command named name, when the
// shell asks for it. It exits the process in that case, and does nothing
// otherwise.
//
// Install it in bash with:
//
//	complete -C atm atm
func Complete(name string) {
	CompletionCommand().Complete(name)
}

// CompletionCommand describes the atm command line for shell completion.
func CompletionCommand() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors("", flag.CommandLine),
	}
	for _, cmds := range Commands {
		for _, c := range cmds {
			f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(f)
			root.Sub[c.Name()] = &complete.Command{
				Flags: flagPredictors(c.Name(), f),
				Args:  argsPredictor(c),
			}
		}
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{Args: predict.Set(commandNames())}
	}
	return root
}

func flagPredictors(cmd string, f *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if cmd == "transfer" && fl.Name == "to" {
			flags[fl.Name] = complete.PredictFunc(accountIDs)
			return
		}
		switch fl.Name {
		case "store", "to":
			flags[fl.Name] = predict.Files("*")
		case "backend", "to-backend":
			flags[fl.Name] = predict.Set{"json", "sqlite"}
		case "a":
			flags[fl.Name] = complete.PredictFunc(accountIDs)
		default:
			if isBool(fl) {
				flags[fl.Name] = nil
			} else {
				flags[fl.Name] = predict.Nothing
			}
		}
	})
	return flags
}

func argsPredictor(c subcommands.Command) complete.Predictor {
	if c.Name() != "topic" {
		return predict.Nothing
	}
	return complete.PredictFunc(func(prefix string) []string {
		topics, err := docs.GetAllTopics()
		if err != nil {
			return nil
		}
		return topics
	})
}

// accountIDs predicts the account numbers of the default store.
func accountIDs(prefix string) []string {
	backend, release, err := OpenBackend(*storePath, *backendName)
	if err != nil {
		return nil
	}
	defer release()
	records, err := backend.Load()
	if err != nil {
		return nil
	}
	var ids []string
	for id := range records {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	return ids
}

func commandNames() []string {
	var names []string
	for _, cmds := range Commands {
		for _, c := range cmds {
			names = append(names, c.Name())
		}
	}
	return names
}

func isBool(fl *flag.Flag) bool {
	b, ok := fl.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
