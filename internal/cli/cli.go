// Package cli implements the line-oriented command surface: one command per
// input line, space-tokenized, with the operation name matched
// case-insensitively. Arguments keep their case — usernames and passwords
// are case-sensitive.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"vaccine-scheduler/internal/model"
	"vaccine-scheduler/internal/scheduler"
	"vaccine-scheduler/internal/session"
)

// Service is what the dispatcher needs from the booking coordinator.
type Service interface {
	Register(ctx context.Context, role model.Role, username, password string) error
	Login(ctx context.Context, sess *session.Session, role model.Role, username, password string) error
	Logout(sess *session.Session) error
	Search(ctx context.Context, sess *session.Session, dateStr string) ([]string, []model.Vaccine, error)
	Reserve(ctx context.Context, sess *session.Session, dateStr, vaccine string) (*model.Appointment, error)
	Cancel(ctx context.Context, sess *session.Session, id int) error
	UploadAvailability(ctx context.Context, sess *session.Session, dateStr string) error
	AddDoses(ctx context.Context, sess *session.Session, name string, n int) error
	Appointments(ctx context.Context, sess *session.Session) ([]model.Appointment, error)
}

var _ Service = (*scheduler.Scheduler)(nil)

type CLI struct {
	svc      Service
	sess     *session.Session
	in       io.Reader
	out      io.Writer
	log      *zap.Logger
	throttle *throttle
}

func New(svc Service, in io.Reader, out io.Writer, log *zap.Logger) *CLI {
	return &CLI{
		svc:      svc,
		sess:     session.New(),
		in:       in,
		out:      out,
		log:      log,
		throttle: newThrottle(),
	}
}

// Run reads commands until quit, EOF or context cancellation. A command
// failure is reported and the loop continues; it never terminates the loop.
func (c *CLI) Run(ctx context.Context) error {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Welcome to the COVID-19 Vaccine Reservation Scheduling Application!")

	sc := bufio.NewScanner(c.in)
	for {
		c.printMenu()
		fmt.Fprint(c.out, "> Enter: ")
		if !sc.Scan() {
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		tokens := strings.Fields(sc.Text())
		if len(tokens) == 0 {
			continue
		}
		op := strings.ToLower(tokens[0])
		if op == "quit" {
			fmt.Fprintln(c.out, "Thank you for using the scheduler, Goodbye!")
			return nil
		}
		c.dispatch(ctx, op, tokens)
	}
}

func (c *CLI) printMenu() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, " *** Please enter one of the following commands *** ")
	fmt.Fprintln(c.out, "> create_patient <username> <password>")
	fmt.Fprintln(c.out, "> create_caregiver <username> <password>")
	fmt.Fprintln(c.out, "> login_patient <username> <password>")
	fmt.Fprintln(c.out, "> login_caregiver <username> <password>")
	fmt.Fprintln(c.out, "> search_caregiver_schedule <date>")
	fmt.Fprintln(c.out, "> reserve <date> <vaccine>")
	fmt.Fprintln(c.out, "> upload_availability <date>")
	fmt.Fprintln(c.out, "> cancel <appointment_id>")
	fmt.Fprintln(c.out, "> add_doses <vaccine> <number>")
	fmt.Fprintln(c.out, "> show_appointments")
	fmt.Fprintln(c.out, "> logout")
	fmt.Fprintln(c.out, "> Quit")
	fmt.Fprintln(c.out)
}

func (c *CLI) dispatch(ctx context.Context, op string, tokens []string) {
	switch op {
	case "create_patient":
		c.create(ctx, model.RolePatient, tokens)
	case "create_caregiver":
		c.create(ctx, model.RoleCaregiver, tokens)
	case "login_patient":
		c.login(ctx, model.RolePatient, tokens)
	case "login_caregiver":
		c.login(ctx, model.RoleCaregiver, tokens)
	case "search_caregiver_schedule":
		c.search(ctx, tokens)
	case "reserve":
		c.reserve(ctx, tokens)
	case "upload_availability":
		c.uploadAvailability(ctx, tokens)
	case "cancel":
		c.cancel(ctx, tokens)
	case "add_doses":
		c.addDoses(ctx, tokens)
	case "show_appointments":
		c.showAppointments(ctx, tokens)
	case "logout":
		c.logout(tokens)
	default:
		fmt.Fprintln(c.out, "Invalid Argument")
	}
}

func (c *CLI) create(ctx context.Context, role model.Role, tokens []string) {
	if len(tokens) != 3 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	if !c.throttle.allow() {
		fmt.Fprintln(c.out, "Too many attempts, slow down!")
		return
	}
	err := c.svc.Register(ctx, role, tokens[1], tokens[2])
	switch {
	case err == nil:
		fmt.Fprintln(c.out, " *** Account created successfully *** ")
	case errors.Is(err, model.ErrUsernameTaken):
		fmt.Fprintln(c.out, "Username taken, try again!")
	case errors.Is(err, model.ErrInvalidInput):
		fmt.Fprintln(c.out, "Please try again!")
	default:
		c.fail("create account", err)
	}
}

func (c *CLI) login(ctx context.Context, role model.Role, tokens []string) {
	if len(tokens) != 3 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	if !c.throttle.allow() {
		fmt.Fprintln(c.out, "Too many attempts, slow down!")
		return
	}
	err := c.svc.Login(ctx, c.sess, role, tokens[1], tokens[2])
	switch {
	case err == nil:
		if role == model.RoleCaregiver {
			fmt.Fprintln(c.out, "Caregiver logged in as: "+tokens[1])
		} else {
			fmt.Fprintln(c.out, "Patient logged in as: "+tokens[1])
		}
	case errors.Is(err, model.ErrAlreadyLoggedIn):
		fmt.Fprintln(c.out, "Already logged-in!")
	case errors.Is(err, model.ErrBadCredentials):
		fmt.Fprintln(c.out, "Please try again!")
	default:
		c.fail("login", err)
	}
}

func (c *CLI) search(ctx context.Context, tokens []string) {
	if len(tokens) != 2 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	caregivers, vaccines, err := c.svc.Search(ctx, c.sess, tokens[1])
	switch {
	case err == nil:
		fmt.Fprintln(c.out, "Available caregivers: "+strings.Join(caregivers, ", "))
		fmt.Fprintln(c.out, "Vaccine doses:")
		for _, v := range vaccines {
			fmt.Fprintf(c.out, "  %s: %d\n", v.Name, v.Doses)
		}
	case errors.Is(err, model.ErrNotLoggedIn):
		fmt.Fprintln(c.out, "Please login first!")
	case errors.Is(err, model.ErrInvalidInput):
		fmt.Fprintln(c.out, "Wrong date format! Should be MM-DD-YYYY")
	case errors.Is(err, model.ErrNoAvailability):
		fmt.Fprintln(c.out, "No caregiver is available on that day!")
	default:
		c.fail("search schedule", err)
	}
}

func (c *CLI) reserve(ctx context.Context, tokens []string) {
	if len(tokens) != 3 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	date, vaccine := tokens[1], tokens[2]
	appt, err := c.svc.Reserve(ctx, c.sess, date, vaccine)
	switch {
	case err == nil:
		fmt.Fprintln(c.out, "Reservation success!")
		fmt.Fprintf(c.out, "Your caregiver is %s, your appointment ID is %d\n", appt.Caregiver, appt.ID)
	case errors.Is(err, model.ErrNotAuthorized):
		fmt.Fprintln(c.out, "Please login as a patient first!")
	case errors.Is(err, model.ErrInvalidInput):
		fmt.Fprintln(c.out, "Wrong date format! Should be MM-DD-YYYY")
	case errors.Is(err, model.ErrUnknownVaccine):
		fmt.Fprintln(c.out, "No such vaccine, please try again!")
	case errors.Is(err, model.ErrOutOfStock):
		fmt.Fprintf(c.out, "Vaccine %s is out of stock!\n", vaccine)
	case errors.Is(err, model.ErrNoAvailability):
		fmt.Fprintln(c.out, "No caregiver is available on that day!")
	case errors.Is(err, model.ErrDuplicateBooking):
		fmt.Fprintf(c.out, "You have already scheduled an appointment on %s\n", date)
	default:
		c.fail("reserve", err)
	}
}

func (c *CLI) uploadAvailability(ctx context.Context, tokens []string) {
	if len(tokens) != 2 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	err := c.svc.UploadAvailability(ctx, c.sess, tokens[1])
	switch {
	case err == nil:
		fmt.Fprintln(c.out, "Availability uploaded!")
	case errors.Is(err, model.ErrNotAuthorized):
		fmt.Fprintln(c.out, "Please login as a caregiver first!")
	case errors.Is(err, model.ErrInvalidInput):
		fmt.Fprintln(c.out, "Wrong date format! Should be MM-DD-YYYY")
	case errors.Is(err, model.ErrDuplicateBooking):
		fmt.Fprintln(c.out, "You have appointment on that day!")
	default:
		c.fail("upload availability", err)
	}
}

func (c *CLI) cancel(ctx context.Context, tokens []string) {
	if len(tokens) != 2 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	id, err := strconv.Atoi(tokens[1])
	if err != nil {
		fmt.Fprintln(c.out, "Please input a valid appointment ID!")
		return
	}
	err = c.svc.Cancel(ctx, c.sess, id)
	switch {
	case err == nil:
		fmt.Fprintf(c.out, "Appointment %d has been successfully canceled!\n", id)
	case errors.Is(err, model.ErrNotLoggedIn):
		fmt.Fprintln(c.out, "Please login first!")
	case errors.Is(err, model.ErrNotFound):
		fmt.Fprintln(c.out, "Wrong ID, or you have nothing to cancel!")
	default:
		c.fail("cancel", err)
	}
}

func (c *CLI) addDoses(ctx context.Context, tokens []string) {
	if len(tokens) != 3 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	n, err := strconv.Atoi(tokens[2])
	if err != nil {
		fmt.Fprintln(c.out, "Invalid input!")
		return
	}
	err = c.svc.AddDoses(ctx, c.sess, tokens[1], n)
	switch {
	case err == nil:
		fmt.Fprintln(c.out, "Doses updated!")
	case errors.Is(err, model.ErrNotAuthorized):
		fmt.Fprintln(c.out, "Please login as a caregiver first!")
	case errors.Is(err, model.ErrInvalidInput):
		fmt.Fprintln(c.out, "Invalid input!")
	default:
		c.fail("add doses", err)
	}
}

func (c *CLI) showAppointments(ctx context.Context, tokens []string) {
	if len(tokens) != 1 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	ident, loggedIn := c.sess.Current()
	appts, err := c.svc.Appointments(ctx, c.sess)
	switch {
	case err == nil:
		if len(appts) == 0 {
			if loggedIn && ident.Role == model.RoleCaregiver {
				fmt.Fprintln(c.out, "There is no appointments for you!")
			} else {
				fmt.Fprintln(c.out, "You have not scheduled any appointments!")
			}
			return
		}
		for _, a := range appts {
			counterpart := a.Caregiver
			label := "Caregiver's name"
			if ident.Role == model.RoleCaregiver {
				counterpart = a.Patient
				label = "Patient's name"
			}
			fmt.Fprintf(c.out, "Appointment ID: %d, %s: %s, Vaccine: %s, Date: %s\n",
				a.ID, label, counterpart, a.Vaccine, a.Day.Format(scheduler.DateLayout))
		}
	case errors.Is(err, model.ErrNotLoggedIn):
		fmt.Fprintln(c.out, "Please login first!")
	default:
		c.fail("show appointments", err)
	}
}

func (c *CLI) logout(tokens []string) {
	if len(tokens) != 1 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	err := c.svc.Logout(c.sess)
	switch {
	case err == nil:
		fmt.Fprintln(c.out, "Logged-out!")
	case errors.Is(err, model.ErrNotLoggedIn):
		fmt.Fprintln(c.out, "No one logged-in!")
	default:
		c.fail("logout", err)
	}
}

// fail reports a storage or otherwise unclassified error. The message stays
// generic; detail goes to the log.
func (c *CLI) fail(op string, err error) {
	c.log.Error("command failed", zap.String("op", op), zap.Error(err))
	fmt.Fprintln(c.out, "Error occurred, please try again!")
}
