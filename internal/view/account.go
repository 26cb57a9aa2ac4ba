package view

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/service"
)

const registerFallback = "Registration failed, try again later"

func (a *App) login(ctx context.Context) (route, error) {
	a.title("Login", "Type "+backCommand+" to return home.")
	for {
		email, err := a.readLine(ctx, "Email: ")
		if err != nil {
			return 0, err
		}
		if email == backCommand {
			return routeHome, nil
		}
		password, err := a.readLine(ctx, "Password: ")
		if err != nil {
			return 0, err
		}

		user, err := a.account.Login(ctx, service.LoginInput{Email: email, Password: password})
		if err == nil {
			a.success("Welcome " + user.Name)
			return routeHome, nil
		}
		if a.showInvalid(err) {
			continue
		}
		if errors.Is(err, service.ErrLoginRejected) {
			a.failure("Login failed, try again later")
			continue
		}
		a.fail(err)
	}
}

func (a *App) register(ctx context.Context) (route, error) {
	a.title("Register", "Type "+backCommand+" to return home.")
	for {
		name, err := a.readLine(ctx, "Name: ")
		if err != nil {
			return 0, err
		}
		if name == backCommand {
			return routeHome, nil
		}
		email, err := a.readLine(ctx, "Email: ")
		if err != nil {
			return 0, err
		}
		password, err := a.readLine(ctx, "Password: ")
		if err != nil {
			return 0, err
		}

		err = a.account.Register(ctx, service.RegisterInput{Name: name, Email: email, Password: password})
		if err == nil {
			a.success("Account created, you can log in now")
			return routeLogin, nil
		}
		if a.showInvalid(err) {
			continue
		}
		a.logger.Debug("register failed", zap.Error(err))
		if msg, ok := api.ServerMessage(err); ok && msg != "" {
			a.failure(msg)
		} else {
			a.failure(registerFallback)
		}
	}
}

func (a *App) logout(ctx context.Context) (route, error) {
	a.account.Logout(ctx)
	a.success("Logged out")
	return routeLogin, nil
}
