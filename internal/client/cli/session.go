package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/gophblog/internal/client/auth"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	confirmPassword, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	if password != confirmPassword {
		return fmt.Errorf("passwords do not match")
	}

	userID, err := c.authService.Register(ctx, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %d\n", userID)
	c.io.Printf("Email: %s\n", email)
	c.io.Println()
	c.io.Println("Please run 'gophblog login' to start writing.")

	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	authData, err := c.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Email: %s\n", authData.Email)
	c.io.Printf("Access token expires in: %d seconds\n", authData.ExpiresIn)

	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	if err := c.authService.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logout successful!")
	c.io.Println("Your local session has been deleted.")

	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	authData, err := c.authService.Session(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'gophblog login' to authenticate.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Email: %s\n", authData.Email)

	expiresAt := time.Unix(authData.ExpiresAt, 0)
	if remaining := time.Until(expiresAt); remaining > 0 {
		c.io.Printf("Access token expires: %s (in %s)\n", expiresAt.Format(time.RFC3339), remaining.Round(time.Second))
	} else {
		c.io.Println("Access token expired, it will be renewed on the next request.")
	}

	// Проверяем сессию на сервере
	err = c.authService.WithAccessToken(ctx, func(accessToken string) error {
		me, err := c.blog.Me(ctx, accessToken)
		if err != nil {
			return err
		}
		c.io.Printf("Server user ID: %d\n", me.ID)
		return nil
	})
	if err != nil {
		c.io.Printf("⚠️  Server check failed: %v\n", err)
	}

	return nil
}
