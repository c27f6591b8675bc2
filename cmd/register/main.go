// Command register walks through the employee registration form on the
// terminal and submits it to a running API.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/geocoder89/staffhub/internal/form"
)

func main() {
	api := flag.String("api", "http://localhost:8080", "base URL of the staffhub API")
	flag.Parse()

	c := &client{base: strings.TrimRight(*api, "/"), http: &http.Client{Timeout: 10 * time.Second}}

	if err := run(context.Background(), os.Stdin, os.Stdout, c); err != nil {
		fmt.Fprintln(os.Stderr, "register:", err)
		os.Exit(1)
	}
}

type client struct {
	base string
	http *http.Client
}

type apiReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *client) register(ctx context.Context, values map[form.FieldName]string) (apiReply, error) {
	body, err := json.Marshal(map[string]string{
		"email":    values[form.FieldEmail],
		"password": values[form.FieldPassword],
		"name":     values[form.FieldFullName],
	})
	if err != nil {
		return apiReply{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/auth/register", bytes.NewReader(body))
	if err != nil {
		return apiReply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return apiReply{}, fmt.Errorf("post register: %w", err)
	}
	defer res.Body.Close()

	var reply apiReply
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		return apiReply{}, fmt.Errorf("decode register reply (status %d): %w", res.StatusCode, err)
	}

	return reply, nil
}

func (c *client) emailTaken(ctx context.Context, email string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/auth/check-email/"+url.PathEscape(email), nil)
	if err != nil {
		return false, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	var reply struct {
		Exists bool   `json:"exists"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		return false, err
	}
	if reply.Error != "" {
		return false, errors.New(reply.Error)
	}

	return reply.Exists, nil
}

// run prompts for every field, prints inline check results as values change
// and submits once the form is clean. Invalid forms are re-prompted.
func run(ctx context.Context, in io.Reader, out io.Writer, c *client) error {
	scanner := bufio.NewScanner(in)

	var (
		reply     apiReply
		submitErr error
	)

	f := form.New(form.RegistrationFields, func(values map[form.FieldName]string) {
		reply, submitErr = c.register(ctx, values)
	})

	pending := form.RegistrationFields

	for {
		for field := range form.All(pending) {
			fmt.Fprintf(out, "%s: ", field.Label)

			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return err
				}
				return io.ErrUnexpectedEOF
			}

			f.OnFieldChange(field.Name, scanner.Text())

			if msg, failed := f.State().Check(field.Name).Err(); failed {
				fmt.Fprintf(out, "  ! %s\n", msg)
			}

			if field.Name == form.FieldEmail {
				email := strings.TrimSpace(f.State().Value(form.FieldEmail))
				if taken, err := c.emailTaken(ctx, email); err == nil && taken {
					fmt.Fprintln(out, "  ! That email is already registered.")
				}
			}
		}

		if f.OnSubmit() {
			break
		}

		errs := f.State().Errors()
		pending = pending[:0:0]
		for field := range form.All(form.RegistrationFields) {
			if msg, ok := errs[field.Name]; ok {
				fmt.Fprintf(out, "  ! %s\n", msg)
				pending = append(pending, field)
			}
		}
	}

	if submitErr != nil {
		return submitErr
	}

	if !reply.Success {
		fmt.Fprintf(out, "Registration failed: %s\n", reply.Message)
		return nil
	}

	msg, _ := f.State().Success()
	fmt.Fprintln(out, msg)

	return nil
}
