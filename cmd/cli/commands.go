package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/stockkeeper/internal/aggregate"
	"github.com/and161185/stockkeeper/internal/client"
	"github.com/and161185/stockkeeper/internal/convert"
	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/and161185/stockkeeper/internal/model"
)

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errs.ErrValidation, fs.Name(), err)
	}
	return nil
}

func need(flagName string) error {
	return fmt.Errorf("%w: need -%s", errs.ErrValidation, flagName)
}

func idFlag(fs *flag.FlagSet) *string { return fs.String("id", "", "item id (uuid)") }

func parseIDFlag(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, need("id")
	}
	return convert.ParseID(raw)
}

// readPicked loads an image file; an empty path means no image.
func readPicked(path string) (*client.Picked, error) {
	if path == "" {
		return nil, nil
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		path = "stdin"
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return &client.Picked{Filename: filepath.Base(path), Data: data}, nil
}

/************ identity ************/

func credentialsFlags(name string, args []string) (string, string, error) {
	fs := newFlags(name)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := parse(fs, args); err != nil {
		return "", "", err
	}
	if *email == "" || *password == "" {
		return "", "", fmt.Errorf("%w: need -email and -password", errs.ErrValidation)
	}
	return *email, *password, nil
}

func cmdSignUp(ctx context.Context, a *app, args []string) error {
	email, password, err := credentialsFlags("signup", args)
	if err != nil {
		return err
	}
	id, err := a.c.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, id)
	return nil
}

func cmdSignIn(ctx context.Context, a *app, args []string) error {
	email, password, err := credentialsFlags("signin", args)
	if err != nil {
		return err
	}
	u, err := a.c.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s\n", u.Email)
	return nil
}

func cmdSignOut(_ context.Context, a *app, _ []string) error {
	if err := a.c.SignOut(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func cmdWhoAmI(ctx context.Context, a *app, _ []string) error {
	if a.c.CurrentUser() == nil {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}
	u, err := a.c.WhoAmI(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s)\n", u.Email, u.UserID)
	return nil
}

/************ items ************/

func cmdList(ctx context.Context, a *app, args []string) error {
	fs := newFlags("list")
	q := fs.String("q", "", "search text")
	category := fs.String("category", aggregate.AllCategories, "category")
	if err := parse(fs, args); err != nil {
		return err
	}
	items, err := a.c.ListItems(ctx)
	if err != nil {
		return err
	}
	v := aggregate.NewView()
	v.ApplyItems(items)
	v.Search(*q, *category)
	return printItems(a.out, v.Visible, v.Summary.Threshold)
}

func cmdGet(ctx context.Context, a *app, args []string) error {
	fs := newFlags("get")
	rawID := idFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := parseIDFlag(*rawID)
	if err != nil {
		return err
	}
	it, err := a.c.GetItem(ctx, id)
	if err != nil {
		return err
	}
	printJSON(a.out, convert.ToAPIItem(it))
	return nil
}

func cmdAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("add")
	name := fs.String("name", "", "item name")
	qty := fs.String("qty", "", "initial quantity")
	category := fs.String("category", "", "category (default Other)")
	image := fs.String("image", "", "image file ('-'=stdin)")
	if err := parse(fs, args); err != nil {
		return err
	}
	q, err := model.ParseQuantity(*qty)
	if err != nil {
		return err
	}
	img, err := readPicked(*image)
	if err != nil {
		return err
	}
	id, err := a.c.AddItem(ctx, model.NewItem{Name: *name, Quantity: q, Category: *category}, img)
	if id != uuid.Nil {
		fmt.Fprintln(a.out, id)
	}
	return err
}

// patchFromFlags builds a patch from the flags that were actually given.
func patchFromFlags(fs *flag.FlagSet) (model.ItemPatch, error) {
	var p model.ItemPatch
	var err error
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "name":
			p.Name = &v
		case "category":
			p.Category = &v
		case "qty":
			q, perr := model.ParseQuantity(v)
			if perr != nil {
				err = perr
				return
			}
			p.Quantity = &q
		}
	})
	if err != nil {
		return model.ItemPatch{}, err
	}
	if p.Empty() {
		return model.ItemPatch{}, fmt.Errorf("%w: nothing to change", errs.ErrValidation)
	}
	return p, nil
}

func cmdEdit(ctx context.Context, a *app, args []string) error {
	fs := newFlags("edit")
	rawID := idFlag(fs)
	fs.String("name", "", "new name")
	fs.String("qty", "", "new quantity")
	fs.String("category", "", "new category")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := parseIDFlag(*rawID)
	if err != nil {
		return err
	}
	p, err := patchFromFlags(fs)
	if err != nil {
		return err
	}
	if err := a.c.UpdateItem(ctx, id, p); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "ok")
	return nil
}

func cmdAttach(ctx context.Context, a *app, args []string) error {
	fs := newFlags("attach")
	rawID := idFlag(fs)
	image := fs.String("image", "", "image file ('-'=stdin)")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := parseIDFlag(*rawID)
	if err != nil {
		return err
	}
	img, err := readPicked(*image)
	if err != nil {
		return err
	}
	if img == nil {
		return need("image")
	}
	url, err := a.c.AttachImage(ctx, id, *img)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, url)
	return nil
}

func cmdImage(ctx context.Context, a *app, args []string) error {
	fs := newFlags("image")
	rawID := idFlag(fs)
	out := fs.String("o", "", "output file")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := parseIDFlag(*rawID)
	if err != nil {
		return err
	}
	if *out == "" {
		return need("o")
	}
	it, err := a.c.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if it.ImageURL == nil {
		return fmt.Errorf("%w: item has no image", errs.ErrNotFound)
	}
	n, err := download(ctx, *it.ImageURL, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "saved %s (%dB)\n", *out, n)
	return nil
}

func adjust(ctx context.Context, a *app, name string, args []string, delta int64) error {
	fs := newFlags(name)
	rawID := idFlag(fs)
	d := fs.Int64("delta", delta, "quantity change")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := parseIDFlag(*rawID)
	if err != nil {
		return err
	}
	q, err := a.c.AdjustQuantity(ctx, id, *d)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, q)
	return nil
}

func cmdInc(ctx context.Context, a *app, args []string) error {
	return adjust(ctx, a, "inc", args, 1)
}

func cmdDec(ctx context.Context, a *app, args []string) error {
	return adjust(ctx, a, "dec", args, -1)
}

func cmdAdjust(ctx context.Context, a *app, args []string) error {
	return adjust(ctx, a, "adjust", args, 0)
}

func cmdRemove(ctx context.Context, a *app, args []string) error {
	fs := newFlags("rm")
	rawID := idFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := parseIDFlag(*rawID)
	if err != nil {
		return err
	}
	if err := a.c.DeleteItem(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "ok")
	return nil
}

/************ dashboard ************/

func loadView(ctx context.Context, a *app) (*aggregate.View, error) {
	items, err := a.c.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	st, err := a.c.Settings(ctx)
	if err != nil {
		return nil, err
	}
	v := aggregate.NewView()
	v.ApplySettings(st)
	v.ApplyItems(items)
	return v, nil
}

func cmdStats(ctx context.Context, a *app, _ []string) error {
	v, err := loadView(ctx, a)
	if err != nil {
		return err
	}
	printSummary(a.out, v.Summary)
	return nil
}

func cmdLow(ctx context.Context, a *app, _ []string) error {
	v, err := loadView(ctx, a)
	if err != nil {
		return err
	}
	return printItems(a.out, v.Summary.LowStock, v.Summary.Threshold)
}

func cmdWatch(ctx context.Context, a *app, args []string) error {
	fs := newFlags("watch")
	q := fs.String("q", "", "search text")
	category := fs.String("category", aggregate.AllCategories, "category")
	if err := parse(fs, args); err != nil {
		return err
	}
	items, err := a.c.WatchItems(ctx)
	if err != nil {
		return err
	}
	settings, err := a.c.SettingsFeed(ctx)
	if err != nil {
		return err
	}

	v := aggregate.NewView()
	v.Search(*q, *category)
	for items != nil || settings != nil {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-items:
			if !ok {
				items = nil
				continue
			}
			a.log.Debug("items snapshot", zap.Int("count", len(snap)))
			v.ApplyItems(snap)
		case st, ok := <-settings:
			if !ok {
				settings = nil
				continue
			}
			v.ApplySettings(st)
		}
		printDashboard(a.out, v)
	}
	return fmt.Errorf("%w: live updates ended", errs.ErrBackend)
}

/************ settings ************/

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected on or off, got %q", errs.ErrValidation, s)
}

func cmdSettings(ctx context.Context, a *app, args []string) error {
	var (
		st  model.Settings
		err error
	)
	switch {
	case len(args) == 0:
		st, err = a.c.Settings(ctx)
	case len(args) == 2 && args[0] == "dark":
		on, perr := parseToggle(args[1])
		if perr != nil {
			return perr
		}
		st, err = a.c.SetDarkMode(ctx, on)
	case len(args) == 2 && args[0] == "low":
		n, perr := strconv.ParseInt(args[1], 10, 64)
		if perr != nil {
			return fmt.Errorf("%w: threshold %q is not a whole number", errs.ErrValidation, args[1])
		}
		st, err = a.c.SetLowStockThreshold(ctx, n)
	case len(args) == 2 && args[0] == "step":
		d, perr := strconv.ParseInt(args[1], 10, 64)
		if perr != nil {
			return fmt.Errorf("%w: step %q is not a whole number", errs.ErrValidation, args[1])
		}
		st, err = a.c.StepLowStockThreshold(ctx, d)
	default:
		return fmt.Errorf("%w: usage: settings [dark on|off | low <n> | step <+n|-n>]", errs.ErrValidation)
	}
	if err != nil {
		return err
	}
	printSettings(a.out, st)
	return nil
}
