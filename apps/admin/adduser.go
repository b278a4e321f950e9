package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/thaimooc/platform/core"
	"github.com/thaimooc/platform/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.findUser(ctx, uname, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Name:      uname,
			Username:  uname,
			Email:     email,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if isAdmin {
			usr.Roles = user.AllRoles
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	active := true
	_, err = cli.usrRepo.UpdateUser(ctx, usr, &active)
	return err
}

func (cli *commandLine) findUser(ctx context.Context, uname, email string) (user.User, error) {
	if uname != "" {
		if usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname); err == nil {
			return usr, nil
		} else if errors.Cause(err) != user.ErrNotFound {
			return user.User{}, err
		}
	}
	if email != "" {
		return cli.usrRepo.GetUserByEmail(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}
