package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/service"
	"github.com/Guneet-syan/Neural-Breach/internal/session"
	"github.com/Guneet-syan/Neural-Breach/pkg/utils"
)

func (c *CLI) register() map[string]command {
	return map[string]command{
		"serve":           {"run the local view server", c.serve},
		"login":           {"log in to the backend [-email]", c.login},
		"logout":          {"forget the stored token", c.logout},
		"whoami":          {"show the current session", c.whoami},
		"signup":          {"register a new account -email -name [-college -branch -semester]", c.signup},
		"profile":         {"show the profile of the logged-in user", c.profile},
		"events":          {"list calendar events [-month YYYY-MM | -day YYYY-MM-DD]", c.events},
		"add-event":       {"add a calendar event -title -date [-type]", c.addEvent},
		"countdown":       {"show exam countdowns [-watch 10s]", c.countdown},
		"teachers":        {"list teachers with average ratings [-search]", c.teachers},
		"ratings":         {"list ratings [-teacher]", c.ratings},
		"rate":            {"rate a teacher -teacher -subject -score -feedback", c.rate},
		"resources":       {"search resources [-course -type -subject -semester -year -search]", c.resources},
		"my-resources":    {"list resources you uploaded", c.myResources},
		"edit-resource":   {"edit your resource -id [-title -subject -description]", c.editResource},
		"delete-resource": {"delete your resource -id", c.deleteResource},
		"upload":          {"upload a file -file [-title -course -type -privacy ...]", c.upload},
		"download":        {"download a file into the local store <filename> [-title]", c.download},
		"downloads":       {"list downloaded files [-delete id]", c.downloads},
		"libraries":       {"list campus libraries [-search] [-lat -lon]", c.libraries},
		"class":           {"show a class page <id>", c.class},
	}
}

func (c *CLI) serve(ctx context.Context, a Application, args []string) error {
	if err := c.parse(c.flags("serve"), args); err != nil {
		return err
	}
	return a.Serve(ctx)
}

func (c *CLI) login(ctx context.Context, a Application, args []string) error {
	fs := c.flags("login")
	email := fs.String("email", "", "account email")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	if *email == "" {
		v, err := c.prompt("Email: ")
		if err != nil {
			return err
		}
		*email = v
	}
	password, err := c.readPassword()
	if err != nil {
		return err
	}

	if err := a.Services().Session.Login(ctx, *email, password); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Logged in as %s\n", *email)
	return nil
}

func (c *CLI) logout(ctx context.Context, a Application, args []string) error {
	if err := c.parse(c.flags("logout"), args); err != nil {
		return err
	}
	if err := a.Services().Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logged out")
	return nil
}

func (c *CLI) whoami(_ context.Context, a Application, args []string) error {
	if err := c.parse(c.flags("whoami"), args); err != nil {
		return err
	}

	sess := a.Services().Session
	if !sess.LoggedIn() {
		fmt.Fprintln(c.out, "Not logged in")
		return nil
	}

	claims, err := sess.Claims()
	if errors.Is(err, session.ErrNotJWT) {
		fmt.Fprintln(c.out, "Logged in")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Logged in as %s\n", claims.Subject)
	if !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(c.out, "Token expires %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func (c *CLI) signup(ctx context.Context, a Application, args []string) error {
	fs := c.flags("signup")
	req := models.SignupRequest{}
	fs.StringVar(&req.Email, "email", "", "account email")
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.College, "college", "", "college")
	fs.StringVar(&req.Branch, "branch", "", "branch")
	fs.StringVar(&req.Semester, "semester", "", "semester")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	password, err := c.readPassword()
	if err != nil {
		return err
	}
	req.Password = password

	resp, err := a.Services().Session.Signup(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (%s)\n", resp.Message, resp.Email)
	return nil
}

func (c *CLI) profile(ctx context.Context, a Application, args []string) error {
	fs := c.flags("profile")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	p, err := a.Services().Profile.Get(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(p)
	}

	c.table("FIELD\tVALUE", func(w io.Writer) {
		for _, row := range [][2]string{
			{"Name", p.Name}, {"Email", p.Email}, {"College", p.College}, {"Branch", p.Branch},
			{"Semester", p.Semester}, {"Department", p.Department}, {"Course", p.Course},
		} {
			if row[1] != "" {
				fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
			}
		}
	})
	return nil
}

func (c *CLI) events(ctx context.Context, a Application, args []string) error {
	fs := c.flags("events")
	month := fs.String("month", "", "month YYYY-MM")
	day := fs.String("day", "", "day YYYY-MM-DD")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	cal := a.Services().Calendar
	if err := cal.Load(ctx); err != nil {
		return err
	}

	events := cal.Events()
	switch {
	case *day != "":
		events = cal.DayEvents(*day)
	case *month != "":
		t, err := time.Parse("2006-01", *month)
		if err != nil {
			return fmt.Errorf("%w: -month must be YYYY-MM", ErrUsage)
		}
		events = cal.MonthEvents(t.Year(), t.Month())
	}

	if *asJSON {
		return c.printJSON(events)
	}
	if len(events) == 0 {
		fmt.Fprintln(c.out, "No events")
		return nil
	}
	c.table("DATE\tTYPE\tSTATUS\tTITLE", func(w io.Writer) {
		for _, e := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Date, e.Type, e.Status, e.Title)
		}
	})
	return nil
}

func (c *CLI) addEvent(ctx context.Context, a Application, args []string) error {
	fs := c.flags("add-event")
	title := fs.String("title", "", "event title")
	eventType := fs.String("type", "Assignment", "event type")
	date := fs.String("date", "", "date YYYY-MM-DD")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	m, err := a.Services().Calendar.AddEvent(ctx, *title, *eventType, *date)
	if err != nil {
		return err
	}
	if err := m.Wait(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Event %q added on %s\n", strings.TrimSpace(*title), *date)
	return nil
}

func (c *CLI) countdown(ctx context.Context, a Application, args []string) error {
	fs := c.flags("countdown")
	watch := fs.Duration("watch", 0, "keep updating for this long")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	classes := a.Services().Classes
	displays, exams, err := classes.Countdown(ctx)
	if err != nil {
		return err
	}

	show := func(displays map[string]string) {
		c.table("EXAM\tTIME LEFT", func(w io.Writer) {
			for _, e := range exams {
				if d, ok := displays[e.ID]; ok {
					fmt.Fprintf(w, "%s\t%s\n", e.Name, d)
				}
			}
		})
	}

	if *watch <= 0 {
		if len(exams) == 0 {
			fmt.Fprintln(c.out, "No upcoming exams")
			return nil
		}
		show(displays)
		return nil
	}

	ticker, err := classes.Watch(ctx, show)
	if err != nil {
		return err
	}
	defer ticker.Stop()

	select {
	case <-ctx.Done():
	case <-time.After(*watch):
	}
	return nil
}

func (c *CLI) teachers(ctx context.Context, a Application, args []string) error {
	fs := c.flags("teachers")
	search := fs.String("search", "", "filter by name or subject")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	ratings := a.Services().Ratings
	if err := ratings.Load(ctx); err != nil {
		return err
	}

	teachers := ratings.FilterTeachers(*search)
	if len(teachers) == 0 {
		fmt.Fprintln(c.out, "No teachers found")
		return nil
	}
	c.table("NAME\tSUBJECT\tRATING", func(w io.Writer) {
		for _, t := range teachers {
			avg, n := ratings.Average(t.Name)
			score := "-"
			if n > 0 {
				score = fmt.Sprintf("%.1f (%d)", avg, n)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, t.Subject, score)
		}
	})
	return nil
}

func (c *CLI) ratings(ctx context.Context, a Application, args []string) error {
	fs := c.flags("ratings")
	teacher := fs.String("teacher", "", "only this teacher")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	svc := a.Services().Ratings
	if err := svc.Load(ctx); err != nil {
		return err
	}

	list := svc.Ratings()
	if *teacher != "" {
		list = svc.RatingsFor(*teacher)
	}
	if *asJSON {
		return c.printJSON(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(c.out, "No ratings yet")
		return nil
	}
	c.table("DATE\tTEACHER\tSUBJECT\tSCORE\tFEEDBACK", func(w io.Writer) {
		for _, r := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.Date, r.TeacherName, r.Subject, r.Rating, r.Feedback)
		}
	})
	return nil
}

func (c *CLI) rate(ctx context.Context, a Application, args []string) error {
	fs := c.flags("rate")
	r := models.Rating{}
	fs.StringVar(&r.TeacherName, "teacher", "", "teacher name")
	fs.StringVar(&r.Subject, "subject", "", "subject")
	fs.IntVar(&r.Rating, "score", 0, "score 1-5")
	fs.StringVar(&r.Feedback, "feedback", "", "feedback")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	m, err := a.Services().Ratings.Submit(ctx, r)
	if err != nil {
		return err
	}
	if err := m.Wait(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Rated %s %d/5\n", strings.TrimSpace(r.TeacherName), r.Rating)
	return nil
}

func (c *CLI) resources(ctx context.Context, a Application, args []string) error {
	fs := c.flags("resources")
	course := fs.String("course", "", "courses, comma-separated")
	subject := fs.String("subject", "", "subjects, comma-separated")
	types := fs.String("type", "", "types, comma-separated (Notes, PYQ, Summary, Practical)")
	semester := fs.Int("semester", 0, "semester")
	year := fs.Int("year", 0, "year")
	search := fs.String("search", "", "search text")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	explore := a.Services().Explore
	explore.SetFilter(models.ResourceFilter{
		Courses:  utils.SplitCSV(*course),
		Subjects: utils.SplitCSV(*subject),
		Types:    utils.SplitCSV(*types),
		Semester: *semester,
		Year:     *year,
		Search:   *search,
	})
	explore.Flush()
	explore.Wait()

	result := explore.Result()
	if result.Err != nil {
		return result.Err
	}
	if *asJSON {
		return c.printJSON(result.Resources)
	}
	printResources(c, result.Resources)
	return nil
}

func printResources(c *CLI, resources []models.Resource) {
	if len(resources) == 0 {
		fmt.Fprintln(c.out, "No resources found")
		return
	}
	c.table("ID\tTITLE\tCOURSE\tTYPE\tAUTHOR\tDOWNLOADS", func(w io.Writer) {
		for _, r := range resources {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", r.ID, r.Title, r.Course, r.Type, r.Author, r.Downloads)
		}
	})
}

func (c *CLI) myResources(ctx context.Context, a Application, args []string) error {
	if err := c.parse(c.flags("my-resources"), args); err != nil {
		return err
	}
	mine := a.Services().MyResources
	if err := mine.Load(ctx); err != nil {
		return err
	}
	printResources(c, mine.Resources())
	return nil
}

func (c *CLI) editResource(ctx context.Context, a Application, args []string) error {
	fs := c.flags("edit-resource")
	id := fs.String("id", "", "resource id")
	title := fs.String("title", "", "new title")
	subject := fs.String("subject", "", "new subject")
	description := fs.String("description", "", "new description")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	var upd service.ResourceUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			upd.Title = title
		case "subject":
			upd.Subject = subject
		case "description":
			upd.Description = description
		}
	})

	mine := a.Services().MyResources
	if err := mine.Load(ctx); err != nil {
		return err
	}
	m, err := mine.Update(ctx, *id, upd)
	if err != nil {
		return err
	}
	if err := m.Wait(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Resource %s updated\n", *id)
	return nil
}

func (c *CLI) deleteResource(ctx context.Context, a Application, args []string) error {
	fs := c.flags("delete-resource")
	id := fs.String("id", "", "resource id")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	mine := a.Services().MyResources
	if err := mine.Load(ctx); err != nil {
		return err
	}
	m, err := mine.Delete(ctx, *id)
	if err != nil {
		return err
	}
	if err := m.Wait(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Resource %s deleted\n", *id)
	return nil
}

func (c *CLI) upload(ctx context.Context, a Application, args []string) error {
	fs := c.flags("upload")
	path := fs.String("file", "", "file to upload")
	req := models.UploadRequest{}
	fs.StringVar(&req.Title, "title", "", "title (defaults to the file name)")
	fs.StringVar(&req.Subject, "subject", "", "subject")
	fs.StringVar(&req.Course, "course", "", "course (defaults to GENERAL)")
	fs.StringVar(&req.Type, "type", "", "Notes, PYQ, Summary or Practical")
	fs.StringVar(&req.Privacy, "privacy", "", "public or private")
	fs.StringVar(&req.Semester, "semester", "", "semester")
	fs.StringVar(&req.Year, "year", "", "year")
	fs.StringVar(&req.Description, "description", "", "description")
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("%w: -file is required", ErrUsage)
	}

	content, err := os.ReadFile(*path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *path, err)
	}
	req.FileName = *path
	req.Content = content

	resp, err := a.Services().Upload.Upload(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Uploaded %q as %s\n", resp.Title, resp.Filename)
	return nil
}

func (c *CLI) download(ctx context.Context, a Application, args []string) error {
	fs := c.flags("download")
	title := fs.String("title", "", "title for the history")
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: download <filename>", ErrUsage)
	}

	rec, err := a.Services().Downloads.Download(ctx, fs.Arg(0), *title)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %s (%d bytes, sha256 %s) to %s\n", rec.Filename, rec.Size, rec.SHA256, rec.Location)
	return nil
}

func (c *CLI) downloads(ctx context.Context, a Application, args []string) error {
	fs := c.flags("downloads")
	remove := fs.String("delete", "", "remove a download by id")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	svc := a.Services().Downloads
	if *remove != "" {
		if err := svc.Delete(ctx, *remove); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Download %s removed\n", *remove)
		return nil
	}

	records, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(c.out, "No downloads")
		return nil
	}
	c.table("ID\tTITLE\tSIZE\tWHEN\tLOCATION", func(w io.Writer) {
		for _, r := range records {
			location := r.Location
			if r.Missing {
				location += " (missing)"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.ID, r.Title, r.Size, r.DownloadedAt.Local().Format("2006-01-02 15:04"), location)
		}
	})
	return nil
}

func (c *CLI) libraries(_ context.Context, a Application, args []string) error {
	fs := c.flags("libraries")
	search := fs.String("search", "", "filter by name or address")
	lat := fs.String("lat", "", "your latitude")
	lon := fs.String("lon", "", "your longitude")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	svc := a.Services().Libraries
	list := svc.Search(*search)
	if *lat != "" || *lon != "" {
		la, err1 := strconv.ParseFloat(*lat, 64)
		lo, err2 := strconv.ParseFloat(*lon, 64)
		if err1 != nil || err2 != nil {
			return fmt.Errorf("%w: -lat and -lon must both be numbers", ErrUsage)
		}
		keep := make(map[int]bool, len(list))
		for _, l := range list {
			keep[l.ID] = true
		}
		list = list[:0]
		for _, l := range svc.Nearest(la, lo) {
			if keep[l.ID] {
				list = append(list, l)
			}
		}
	}

	if len(list) == 0 {
		fmt.Fprintln(c.out, "No libraries found")
		return nil
	}
	c.table("NAME\tADDRESS\tSTATUS\tCAPACITY\tDISTANCE", func(w io.Writer) {
		for _, l := range list {
			dist := "-"
			if l.DistanceKm > 0 {
				dist = fmt.Sprintf("%.1f km", l.DistanceKm)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\n", l.Name, l.Address, l.Status, l.Capacity, dist)
		}
	})
	return nil
}

func (c *CLI) class(ctx context.Context, a Application, args []string) error {
	fs := c.flags("class")
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: class <id>", ErrUsage)
	}

	view, err := a.Services().Classes.View(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s (%s), %s\n", view.Name, view.Code, view.Instructor)
	if view.ExamSeason {
		fmt.Fprintln(c.out, "Exam season: quick revision sheet "+view.QuickSheet)
	} else if view.Syllabus != "" {
		fmt.Fprintln(c.out, "Syllabus: "+view.Syllabus)
	}
	return nil
}
